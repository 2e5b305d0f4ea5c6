package service

import (
	"github.com/nurpe/gigpay/internal/model"
)

func isClient(caller model.Principal, contract *model.Contract) bool {
	return !caller.IsZero() && caller.ID == contract.Client
}

func isFreelancer(caller model.Principal, contract *model.Contract) bool {
	return !caller.IsZero() && caller.ID == contract.Freelancer
}

func isParty(caller model.Principal, contract *model.Contract) bool {
	return isClient(caller, contract) || isFreelancer(caller, contract)
}

func (e *Engine) isOwner(caller model.Principal) bool {
	return !caller.IsZero() && caller.ID == e.owner
}
