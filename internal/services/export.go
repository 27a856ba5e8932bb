package services

import (
	"context"
	"fmt"

	"github.com/diewo77/go-chantiers/i18n"
	"github.com/diewo77/go-chantiers/internal/apperr"
	"github.com/diewo77/go-chantiers/internal/mailer"
	"github.com/diewo77/go-chantiers/internal/models"
	"github.com/diewo77/go-chantiers/internal/pdf"
	"github.com/diewo77/go-chantiers/validation"
	"github.com/diewo77/go-chantiers/view"
)

// SendInput is the body of a report e-mail.
type SendInput struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// ExportService renders site documents and mails the site report.
type ExportService struct {
	records *RecordService
	pdf     *pdf.Generator
	mail    mailer.Sender
}

func NewExportService(records *RecordService, gen *pdf.Generator, mail mailer.Sender) *ExportService {
	return &ExportService{records: records, pdf: gen, mail: mail}
}

// ChantierPDF renders the site report with all its field reports.
func (s *ExportService) ChantierPDF(ctx context.Context, c *models.Chantier) ([]byte, error) {
	rapports, err := s.records.Rapports(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return rendered(s.pdf.ChantierReport(ctx, *c, rapports))
}

func (s *ExportService) PICPDF(ctx context.Context, c *models.Chantier) ([]byte, error) {
	p, err := s.records.PIC(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return rendered(s.pdf.PIC(ctx, *c, *p))
}

func (s *ExportService) PPSPSPDF(ctx context.Context, c *models.Chantier, p *models.PPSPS) ([]byte, error) {
	return rendered(s.pdf.PPSPS(ctx, *c, *p))
}

func (s *ExportService) PlanPreventionPDF(ctx context.Context, c *models.Chantier, p *models.PlanPrevention) ([]byte, error) {
	return rendered(s.pdf.PlanPrevention(ctx, *c, *p))
}

func (s *ExportService) PermisFeuPDF(ctx context.Context, c *models.Chantier, p *models.PermisFeu) ([]byte, error) {
	return rendered(s.pdf.PermisFeu(ctx, *c, *p))
}

func (s *ExportService) DUERPPDF(ctx context.Context, company *models.Company, d *models.DUERP) ([]byte, error) {
	return rendered(s.pdf.DUERP(ctx, *company, *d))
}

func rendered(out []byte, err error) ([]byte, error) {
	if err != nil {
		return nil, apperr.Wrap("pdf_generation_failed", err)
	}
	return out, nil
}

// SendChantierReport mails the site report PDF to in.To. The boolean is the
// provider's verdict; only invalid input and rendering failures are errors.
func (s *ExportService) SendChantierReport(ctx context.Context, company *models.Company, c *models.Chantier, in SendInput) (bool, error) {
	v := validation.Violations{}
	validation.Required("to", in.To, v)
	validation.Email("to", in.To, v)
	if !v.Empty() {
		return false, apperr.Invalid(v)
	}
	rapports, err := s.records.Rapports(ctx, c.ID)
	if err != nil {
		return false, err
	}
	doc, err := rendered(s.pdf.ChantierReport(ctx, *c, rapports))
	if err != nil {
		return false, err
	}
	subject := fmt.Sprintf("Rapport de chantier - %s", c.Nom)
	html, err := view.RenderEmail(i18n.LangFrom(ctx), "chantier_report.html", map[string]any{
		"Subject":      subject,
		"CompanyName":  company.Name,
		"Message":      in.Message,
		"RapportCount": len(rapports),
		"Chantier":     c,
	})
	if err != nil {
		return false, apperr.Wrap("internal_error", err)
	}
	att := &mailer.Attachment{Name: fmt.Sprintf("chantier-%d.pdf", c.ID), Content: doc}
	return s.mail.Send(ctx, in.To, subject, html, att), nil
}
