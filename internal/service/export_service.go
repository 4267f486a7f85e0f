package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/pkg/export"
	"github.com/noah-isme/exam-seating-api/pkg/storage"
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

type jsonRenderer interface {
	Render(payload interface{}) ([]byte, error)
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
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService builds seating snapshots and persists rendered files.
// The snapshot always carries the full hall configuration, the student
// roster and the occupied assignments.
type ExportService struct {
	halls       hallRepository
	students    rosterRepository
	assignments assignmentRepository
	storage     fileStorage
	jsonr       jsonRenderer
	csv         csvRenderer
	pdf         pdfRenderer
	signer      *storage.SignedURLSigner
	logger      *zap.Logger
	cfg         ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(
	halls hallRepository,
	students rosterRepository,
	assignments assignmentRepository,
	fileStore fileStorage,
	signer *storage.SignedURLSigner,
	cfg ExportConfig,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		halls:       halls,
		students:    students,
		assignments: assignments,
		storage:     fileStore,
		jsonr:       export.NewJSONExporter(),
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		signer:      signer,
		logger:      logger,
		cfg:         cfg,
	}
}

// Generate builds the snapshot for the job's hall and stores the
// rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	snapshot, err := s.BuildSnapshot(ctx, job.Params.HallID)
	if err != nil {
		return nil, err
	}
	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatJSON:
		payload, err = s.jsonr.Render(snapshot)
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(snapshotDataset(snapshot))
	case models.ExportFormatPDF:
		title := fmt.Sprintf("Seating Chart %s", snapshot.Hall.Name)
		payload, err = s.pdf.Render(snapshotDataset(snapshot), title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := buildExportFilename(snapshot.Hall.Name, snapshot.GeneratedAt, job.ID, job.Params.Format)
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
	signedURL := fmt.Sprintf("%s/exports/download/%s", prefix, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// BuildSnapshot assembles the export artifact for a hall.
func (s *ExportService) BuildSnapshot(ctx context.Context, hallID string) (*dto.SeatingSnapshot, error) {
	hall, err := s.halls.FindByID(ctx, hallID)
	if err != nil {
		return nil, err
	}
	students, err := s.students.ListByRegistrationOrder(ctx)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignments.ListByHall(ctx, hallID)
	if err != nil {
		return nil, err
	}
	for i := range students {
		students[i].PhotoData = nil
		students[i].PhotoMIME = nil
	}
	if assignments == nil {
		// A hall without a seating plan still exports, with an empty
		// assignments array rather than null.
		assignments = []models.AssignmentDetail{}
	}
	return &dto.SeatingSnapshot{
		Hall:        *hall,
		Students:    students,
		Assignments: assignments,
		GeneratedAt: time.Now().UTC(),
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

// Cleanup removes files older than ttl (defaults to ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func snapshotDataset(snapshot *dto.SeatingSnapshot) export.Dataset {
	rows := make([]map[string]string, 0, len(snapshot.Assignments))
	for _, a := range snapshot.Assignments {
		rows = append(rows, map[string]string{
			"Row":         fmt.Sprintf("%d", a.Row),
			"Seat":        fmt.Sprintf("%d", a.Seat),
			"Student ID":  deref(a.StudentID),
			"Name":        deref(a.StudentName),
			"Roll Number": deref(a.RollNumber),
		})
	}
	return export.Dataset{
		Headers: []string{"Row", "Seat", "Student ID", "Name", "Roll Number"},
		Rows:    rows,
	}
}

func buildExportFilename(hallName string, generatedAt time.Time, jobID string, format models.ExportFormat) string {
	base := slug.Make(hallName)
	if base == "" {
		base = "hall"
	}
	short := jobID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s_%s_%s.%s", base, generatedAt.UTC().Format("20060102_150405"), short, format)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
