package server

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/histpath/readingorder"
	"github.com/histpath/readingorder/format"
	"github.com/histpath/readingorder/ingest"
	"github.com/histpath/readingorder/internal/jobs"
	"github.com/histpath/readingorder/layout"
	"github.com/histpath/readingorder/model"
)

// orderQuery holds the per-request overrides of the clustering strategy.
type orderQuery struct {
	Strategy            string  `query:"strategy" validate:"omitempty,oneof=dbscan density sequential threshold"`
	Eps                 float64 `query:"eps"`
	Threshold           float64 `query:"threshold"`
	MinSamples          int     `query:"min_samples"`
	MaxReassignDistance float64 `query:"max_reassign_distance"`
	Format              string  `query:"format" validate:"omitempty,oneof=azure paddle paddle-legacy hocr generic"`
	Normalize           bool    `query:"normalize"`
}

// OrderResponse is the body of a successful reading order request.
type OrderResponse struct {
	RequestID string         `json:"request_id"`
	Source    string         `json:"source,omitempty"`
	Results   []model.Result `json:"results"`
	Warnings  []string       `json:"warnings"`
}

// JobResponse acknowledges a submitted job.
type JobResponse struct {
	JobID  string     `json:"job_id"`
	Status jobs.State `json:"status"`
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// parseQuery starts from the server defaults and applies the request's
// overrides.
func (s *Server) parseQuery(c *fiber.Ctx) (layout.StrategyConfig, format.Format, bool, error) {
	def := s.options.Strategy
	q := orderQuery{
		Strategy:            def.Name,
		Eps:                 def.Eps,
		Threshold:           def.Threshold,
		MinSamples:          def.MinSamples,
		MaxReassignDistance: def.MaxReassignDistance,
		Normalize:           s.options.NormalizeText,
	}
	if err := c.QueryParser(&q); err != nil {
		return layout.StrategyConfig{}, format.Unknown, false, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	q.Strategy = strings.ToLower(q.Strategy)
	q.Format = strings.ToLower(q.Format)
	if err := s.validator.Struct(q); err != nil {
		return layout.StrategyConfig{}, format.Unknown, false, fmt.Errorf("%w: %v", errBadRequest, err)
	}

	cfg := layout.StrategyConfig{
		Name:                q.Strategy,
		Threshold:           q.Threshold,
		Eps:                 q.Eps,
		MinSamples:          q.MinSamples,
		MaxReassignDistance: q.MaxReassignDistance,
	}
	if _, err := layout.NewStrategy(cfg); err != nil {
		return layout.StrategyConfig{}, format.Unknown, false, err
	}

	return cfg, format.Parse(q.Format), q.Normalize, nil
}

// readUpload returns the detection file from a multipart "file" field or,
// failing that, the raw body. The bytes are copied since fiber reuses its
// buffers after the handler returns.
func readUpload(c *fiber.Ctx) (string, []byte, error) {
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return "", nil, err
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return "", nil, err
		}
		return fh.Filename, data, nil
	}

	body := c.Body()
	if len(body) == 0 {
		return "", nil, fmt.Errorf("%w: empty request body", errBadRequest)
	}
	return "", bytes.Clone(body), nil
}

// detectFormat refines an unforced format from the upload's file name.
func detectFormat(forced format.Format, filename string, data []byte) format.Format {
	if forced != format.Unknown || filename == "" {
		return forced
	}
	return format.DetectFile(filename, data)
}

func (s *Server) order(c *fiber.Ctx) error {
	strategy, forced, normalize, err := s.parseQuery(c)
	if err != nil {
		return err
	}

	filename, data, err := readUpload(c)
	if err != nil {
		return err
	}

	ord := readingorder.FromBytes(data, detectFormat(forced, filename, data)).
		WithStrategyConfig(strategy).
		WithLogger(s.log.With().Str("request_id", requestID(c)).Logger())
	if normalize {
		ord = ord.NormalizeText()
	}

	results, warnings, err := ord.Results()
	if err != nil {
		return err
	}

	resp := OrderResponse{
		RequestID: requestID(c),
		Source:    filename,
		Results:   results,
		Warnings:  make([]string, 0, len(warnings)),
	}
	for _, w := range warnings {
		resp.Warnings = append(resp.Warnings, w.String())
	}
	return c.JSON(resp)
}

func (s *Server) submitJob(c *fiber.Ctx) error {
	strategy, forced, normalize, err := s.parseQuery(c)
	if err != nil {
		return err
	}

	filename, data, err := readUpload(c)
	if err != nil {
		return err
	}

	f := detectFormat(forced, filename, data)
	if f == format.Unknown {
		f = format.Sniff(data)
	}
	if !f.IsDetections() {
		return fmt.Errorf("%w: %s", ingest.ErrUnknownFormat, f)
	}

	task := jobs.Task{Source: filename, Data: data, Format: f}
	job, err := s.runner.SubmitWith(c.UserContext(), task, jobs.OrderProcessor(strategy, normalize, s.log))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(JobResponse{
		JobID:  job.ID,
		Status: job.State,
	})
}

func (s *Server) getJob(c *fiber.Ctx) error {
	job, err := s.store.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(job)
}
