// Package http provides the analysis job endpoints
package http

import (
	"encoding/base64"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"orderlens/internal/core/export"
	"orderlens/internal/core/order"
	"orderlens/internal/modkit/httpkit"
	perr "orderlens/internal/platform/errors"
	"orderlens/internal/platform/net/http/bind"
	"orderlens/internal/services/api/analysis/domain"
	jobsdom "orderlens/internal/services/jobs/domain"
)

// Deps are the handler dependencies
type Deps struct {
	Jobs      jobsdom.ServicePort
	Artifacts domain.ArtifactsPort // nil when the audit table is off
	MaxBody   int64                // JSON bodies and uploads
}

type handlers struct{ d Deps }

// Register mounts the analysis routes
func Register(r httpkit.Router, d Deps) {
	if d.MaxBody <= 0 {
		d.MaxBody = 32 << 20
	}
	h := &handlers{d: d}

	r.Post("/jobs", httpkit.Handle(h.submit))
	r.Post("/jobs/file", httpkit.Handle(h.submitFile))
	httpkit.Get(r, "/jobs", h.list)
	httpkit.Get(r, "/jobs/{id}", h.get)
	r.Post("/csv", httpkit.Handle(h.csv))
	if d.Artifacts != nil {
		httpkit.Get(r, "/jobs/{id}/artifacts", h.artifacts)
	}
}

// swagger:route POST /analysis/jobs Analysis analysisSubmit
// @Summary Start an analysis job from a pasted transcript
// @Tags Analysis
// @Accept json
// @Produce json
// @Param payload body domain.SubmitInput true "Transcript and window"
// @Success 202 {object} domain.SubmitResponse "accepted"
// @Router /analysis/jobs [post]
func (h *handlers) submit(r *http.Request) httpkit.Response {
	in, err := bind.ParseJSON[domain.SubmitInput](r, bind.Options{MaxBytes: h.d.MaxBody, Strict: true})
	if err != nil {
		return httpkit.Error(err)
	}
	id, err := h.d.Jobs.Submit(r.Context(), jobsdom.Submission{
		Conversation: in.Conversation,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		ShopName:     in.ShopName,
	})
	if err != nil {
		return httpkit.Error(err)
	}
	return httpkit.Accepted(domain.SubmitResponse{JobID: id})
}

// swagger:route POST /analysis/jobs/file Analysis analysisSubmitFile
// @Summary Start an analysis job from an exported chat file
// @Tags Analysis
// @Accept mpfd
// @Produce json
// @Param file formData file true "KakaoTalk export (.txt)"
// @Param shop_name formData string false "Shop name"
// @Param start_date formData string false "Window start"
// @Param end_date formData string false "Window end"
// @Success 202 {object} domain.SubmitResponse "accepted"
// @Router /analysis/jobs/file [post]
func (h *handlers) submitFile(r *http.Request) httpkit.Response {
	// multipart keeps up to 8MB in memory and spills the rest to disk
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		return httpkit.Error(perr.Wrap(err, perr.ErrorCodeInvalidArgument, "invalid multipart form"))
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	f, hdr, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return httpkit.Error(perr.WithField(perr.InvalidArgf("file is required"), "file"))
		}
		return httpkit.Error(perr.Wrap(err, perr.ErrorCodeInvalidArgument, "read upload"))
	}
	defer f.Close()

	text, err := readTranscript(f, h.d.MaxBody)
	if err != nil {
		return httpkit.Error(err)
	}

	id, err := h.d.Jobs.Submit(r.Context(), jobsdom.Submission{
		Conversation: text,
		StartDate:    r.FormValue("start_date"),
		EndDate:      r.FormValue("end_date"),
		ShopName:     r.FormValue("shop_name"),
		FileName:     filepath.Base(hdr.Filename),
	})
	if err != nil {
		return httpkit.Error(err)
	}
	return httpkit.Accepted(domain.SubmitResponse{JobID: id})
}

// swagger:route GET /analysis/jobs/{id} Analysis analysisGet
// @Summary Job status with the result once completed
// @Tags Analysis
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} jobsdom.Job "ok"
// @Failure 404 {object} httpkit.Envelope "unknown job"
// @Router /analysis/jobs/{id} [get]
func (h *handlers) get(r *http.Request) (any, error) {
	return h.d.Jobs.Get(r.Context(), httpkit.Param(r, "id"))
}

// swagger:route GET /analysis/jobs Analysis analysisList
// @Summary Recent jobs, newest first
// @Tags Analysis
// @Produce json
// @Param limit query int false "Page size"
// @Success 200 {array} jobsdom.Summary "ok"
// @Router /analysis/jobs [get]
func (h *handlers) list(r *http.Request) (any, error) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		return nil, err
	}
	return h.d.Jobs.List(r.Context(), limit)
}

// swagger:route POST /analysis/csv Analysis analysisCSV
// @Summary Render a result as three base64 encoded CSV tables
// @Tags Analysis
// @Accept json
// @Produce json
// @Param payload body order.Result true "Analysis result"
// @Success 200 {object} domain.CSVResponse "ok"
// @Router /analysis/csv [post]
func (h *handlers) csv(r *http.Request) httpkit.Response {
	res, err := bind.ParseJSON[order.Result](r, bind.Options{MaxBytes: h.d.MaxBody})
	if err != nil {
		return httpkit.Error(err)
	}
	t := export.Render(res)
	enc := base64.StdEncoding.EncodeToString
	return httpkit.OK(domain.CSVResponse{
		TimeBased:     enc([]byte(t.Time)),
		ItemBased:     enc([]byte(t.Item)),
		CustomerBased: enc([]byte(t.Customer)),
	})
}

// swagger:route GET /analysis/jobs/{id}/artifacts Analysis analysisArtifacts
// @Summary Stored model prompts and replies for a job
// @Tags Analysis
// @Produce json
// @Param id path string true "Job id"
// @Param limit query int false "Max rows"
// @Success 200 {array} domain.Artifact "ok"
// @Router /analysis/jobs/{id}/artifacts [get]
func (h *handlers) artifacts(r *http.Request) (any, error) {
	id := httpkit.Param(r, "id")
	if _, err := h.d.Jobs.Get(r.Context(), id); err != nil {
		return nil, err
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		return nil, err
	}
	return h.d.Artifacts.List(r.Context(), id, limit)
}

func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, perr.WithField(perr.InvalidArgf("%s must be a non-negative integer", key), key)
	}
	return n, nil
}
