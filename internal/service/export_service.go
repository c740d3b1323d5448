package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campusops/registrar-api/internal/models"
	"github.com/campusops/registrar-api/pkg/export"
	"github.com/campusops/registrar-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService builds export datasets from a student's transcript and
// persists the rendered files behind signed download tokens.
type ExportService struct {
	transcripts *TranscriptService
	storage     fileStorage
	csv         csvRenderer
	pdf         pdfRenderer
	signer      *storage.SignedURLSigner
	logger      *zap.Logger
	cfg         ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(transcripts *TranscriptService, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		transcripts: transcripts,
		storage:     store,
		csv:         csv,
		pdf:         pdf,
		signer:      signer,
		logger:      logger,
		cfg:         cfg,
	}
}

// Generate builds the dataset for the job and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	signedURL := fmt.Sprintf("%s/export/%s", prefix, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ReportTypeTranscript:
		return s.buildTranscriptDataset(ctx, job.Params)
	case models.ReportTypeProgress:
		return s.buildProgressDataset(ctx, job.Params)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", job.Type)
	}
}

func (s *ExportService) buildTranscriptDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	entries, err := s.transcripts.List(ctx, params.StudentID, models.TranscriptFilter{TermID: params.TermID})
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := make([]map[string]string, 0, len(entries))
	for _, entry := range entries {
		grade := ""
		if entry.Grade != nil {
			grade = string(*entry.Grade)
		}
		rows = append(rows, map[string]string{
			"Term":    entry.TermID,
			"Course":  fmt.Sprintf("%s %s", entry.Subject, entry.CourseNumber),
			"Title":   entry.Title,
			"Credits": fmt.Sprintf("%.1f", entry.Credits),
			"Grade":   grade,
			"Status":  string(entry.Status),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Term", "Course", "Title", "Credits", "Grade", "Status"},
		Rows:    rows,
	}
	title := fmt.Sprintf("Transcript %s", params.StudentID)
	return dataset, title, nil
}

func (s *ExportService) buildProgressDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	report, err := s.transcripts.Progress(ctx, params.StudentID)
	if err != nil {
		return export.Dataset{}, "", err
	}

	gpa := "n/a"
	if report.Summary.GPA != nil {
		gpa = fmt.Sprintf("%.3f", *report.Summary.GPA)
	}
	rows := []map[string]string{
		{"Item": "GPA", "Status": gpa, "Detail": ""},
		{"Item": "Credits Completed", "Status": fmt.Sprintf("%.1f", report.Summary.CreditsCompleted), "Detail": ""},
		{"Item": "Credits Attempted", "Status": fmt.Sprintf("%.1f", report.Summary.CreditsAttempted), "Detail": ""},
	}
	for _, category := range report.Categories {
		status := "open"
		if category.Completed {
			status = "completed"
		} else if category.InProgress {
			status = "in progress"
		}
		rows = append(rows, map[string]string{
			"Item":   fmt.Sprintf("SBC %s", category.Code),
			"Status": status,
			"Detail": categoryDetail(category),
		})
	}

	dataset := export.Dataset{
		Headers: []string{"Item", "Status", "Detail"},
		Rows:    rows,
	}
	title := fmt.Sprintf("Progress Report %s", params.StudentID)
	return dataset, title, nil
}

func categoryDetail(category models.RequirementCategory) string {
	courses := category.CompletedCourses
	if len(courses) == 0 {
		courses = category.InProgressCourses
	}
	parts := make([]string, 0, len(courses))
	for _, course := range courses {
		parts = append(parts, fmt.Sprintf("%s %s", course.Subject, course.CourseNumber))
	}
	return strings.Join(parts, "; ")
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	studentPart := sanitizeFilename(job.Params.StudentID)
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), studentPart, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
