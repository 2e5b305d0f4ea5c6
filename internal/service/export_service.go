package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nurpe/gigpay/internal/model"
)

type PDFGenerator interface {
	Generate(statement model.ContractStatement) ([]byte, error)
}

type ExcelGenerator interface {
	Generate(statement model.ContractStatement) ([]byte, error)
}

// ExportService renders contract statements into downloadable documents.
type ExportService struct {
	engine *Engine
	pdf    PDFGenerator
	excel  ExcelGenerator
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func NewExportService(engine *Engine, pdf PDFGenerator, excel ExcelGenerator) *ExportService {
	return &ExportService{
		engine: engine,
		pdf:    pdf,
		excel:  excel,
	}
}

func (s *ExportService) StatementPDF(ctx context.Context, caller model.Principal, contractID uint64) (*ExportResult, error) {
	statement, err := s.engine.Statement(ctx, caller, contractID)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Generate(*statement)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: buildFileName("statement", statement.Contract, "pdf"),
		Content:  content,
	}, nil
}

func (s *ExportService) LedgerWorkbook(ctx context.Context, caller model.Principal, contractID uint64) (*ExportResult, error) {
	statement, err := s.engine.Statement(ctx, caller, contractID)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Generate(*statement)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: buildFileName("ledger", statement.Contract, "xlsx"),
		Content:  content,
	}, nil
}

func buildFileName(kind string, contract model.Contract, ext string) string {
	title := strings.ToLower(sanitizeFileName(contract.Title))
	if title == "" {
		return fmt.Sprintf("contract-%d-%s.%s", contract.ID, kind, ext)
	}
	return fmt.Sprintf("contract-%d-%s-%s.%s", contract.ID, title, kind, ext)
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
