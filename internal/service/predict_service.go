package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/pushparajlokesh/ml-cts-pro/internal/entity"
	"github.com/pushparajlokesh/ml-cts-pro/internal/model"
	"github.com/pushparajlokesh/ml-cts-pro/internal/session"
	"github.com/pushparajlokesh/ml-cts-pro/internal/table"
)

const idColumn = "ID"

// RunRecorder is the slice of the repository the predict service needs.
type RunRecorder interface {
	RecordRun(ctx context.Context, run *entity.PredictionRun) (*entity.PredictionRun, error)
}

// ResultStore records the latest result filename per session.
type ResultStore interface {
	SetResultFile(ctx context.Context, sid, filename string) error
}

// PredictResult is what a successful prediction renders from.
type PredictResult struct {
	Filename string
	RowCount int
	Preview  *table.Table
}

// ModelSummary is the lightweight artifact description shown on the
// dashboard.
type ModelSummary struct {
	ExpectedFeatures int
	Targets          int
}

type PredictService interface {
	Predict(ctx context.Context, sess *session.Session, upload *multipart.FileHeader) (*PredictResult, error)
	Summary() *ModelSummary
}

type predictService struct {
	artifact    *model.Artifact
	runs        RunRecorder
	results     ResultStore
	kafkaWriter *kafka.Writer
	uploadDir   string
}

// NewPredictService creates a new instance of PredictService. The artifact
// may be nil when model files were absent at startup; predictions then fail
// with ErrModelUnavailable while the rest of the app keeps serving.
func NewPredictService(artifact *model.Artifact, runs RunRecorder, results ResultStore, kafkaWriter *kafka.Writer, uploadDir string) PredictService {
	return &predictService{
		artifact:    artifact,
		runs:        runs,
		results:     results,
		kafkaWriter: kafkaWriter,
		uploadDir:   uploadDir,
	}
}

func (s *predictService) Summary() *ModelSummary {
	if !s.artifact.Ready() {
		return nil
	}
	return &ModelSummary{
		ExpectedFeatures: s.artifact.Predictor.NumFeatures(),
		Targets:          len(s.artifact.TargetCols),
	}
}

// Predict runs the upload → validate → align → predict → persist/export
// pipeline. On any failure no new result filename is recorded for the
// session.
func (s *predictService) Predict(ctx context.Context, sess *session.Session, upload *multipart.FileHeader) (*PredictResult, error) {
	if upload == nil {
		return nil, ErrNoFile
	}
	if upload.Filename == "" {
		return nil, ErrEmptyFilename
	}
	if strings.ToLower(filepath.Ext(upload.Filename)) != ".csv" {
		return nil, ErrUnsupportedExtension
	}
	if !s.artifact.Ready() {
		return nil, ErrModelUnavailable
	}

	path, err := s.saveUpload(upload)
	if err != nil {
		return nil, err
	}

	t, err := s.readTable(path)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	// The ID column passes through unmodified and is never fed to the model.
	var ids []string
	if t.HasColumn(idColumn) {
		ids = t.Column(idColumn)
	}
	features := t.Drop(idColumn)

	features, err = s.align(features)
	if err != nil {
		return nil, err
	}

	matrix, err := features.FloatMatrix()
	if err != nil {
		return nil, &PredictError{Err: err}
	}
	preds, err := s.artifact.Predictor.Predict(matrix)
	if err != nil {
		return nil, &PredictError{Err: err}
	}

	out := table.FromMatrix(s.artifact.TargetCols, preds)
	if ids != nil {
		if err := out.InsertColumn(0, idColumn, ids); err != nil {
			return nil, &PredictError{Err: err}
		}
	}

	name := fmt.Sprintf("predictions_%s.csv", time.Now().Format("20060102_150405"))
	if err := s.writeResult(name, out); err != nil {
		return nil, err
	}

	run := &entity.PredictionRun{UserID: sess.UserID, Filename: name, RowCount: out.Len()}
	if _, err := s.runs.RecordRun(ctx, run); err != nil {
		logger.Error().Err(err).Msg("Error recording prediction run")
		return nil, err
	}

	// Replaces whatever the session pointed at before.
	if err := s.results.SetResultFile(ctx, sess.SID, name); err != nil {
		logger.Error().Err(err).Msg("Error recording result file in session")
		return nil, err
	}

	s.publishPredictionEvent(ctx, sess, name, out.Len())

	return &PredictResult{Filename: name, RowCount: out.Len(), Preview: out.Head(10)}, nil
}

// align reduces and reorders the feature table to what the model was trained
// on. With an explicit feature list, extra uploaded columns are silently
// dropped (matches the trained pipeline; flagged as a possible data-loss
// surprise in DESIGN.md). Without one, only the width is checked and column
// order is taken as-is.
func (s *predictService) align(features *table.Table) (*table.Table, error) {
	if len(s.artifact.FeatureCols) > 0 {
		if missing := features.Missing(s.artifact.FeatureCols); len(missing) > 0 {
			return nil, &MissingColumnsError{Columns: missing}
		}
		return features.Select(s.artifact.FeatureCols)
	}

	expected := s.artifact.Predictor.NumFeatures()
	if features.Width() != expected {
		return nil, &FeatureCountError{Expected: expected, Actual: features.Width()}
	}
	return features, nil
}

func (s *predictService) saveUpload(upload *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", err
	}

	src, err := upload.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(s.uploadDir, filepath.Base(upload.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return path, nil
}

func (s *predictService) readTable(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return table.Read(f)
}

func (s *predictService) writeResult(name string, out *table.Table) error {
	f, err := os.Create(filepath.Join(s.uploadDir, name))
	if err != nil {
		return err
	}
	if err := out.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// publishPredictionEvent is best-effort: the run is already committed, so a
// broker failure is logged and not surfaced to the user.
func (s *predictService) publishPredictionEvent(ctx context.Context, sess *session.Session, filename string, rows int) {
	if s.kafkaWriter == nil || os.Getenv("ENV") == "test" {
		return
	}

	event := entity.PredictionEvent{
		UserID:    sess.UserID,
		Username:  sess.Username,
		Filename:  filename,
		RowCount:  rows,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Warn().Err(err).Msg("Error marshalling prediction event")
		return
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("prediction-completed-%d", sess.UserID)),
		Value: payload,
	}
	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Warn().Err(err).Msg("Error publishing prediction event")
	}
}
