// Package dashboard serves the dashboard page and the Datastar SSE handlers
// that re-render it.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/zurich-quartiere/internal/geodata"
	"github.com/joeblew999/zurich-quartiere/internal/humastar"
	"github.com/joeblew999/zurich-quartiere/internal/logger"
	"github.com/joeblew999/zurich-quartiere/internal/session"
	"github.com/joeblew999/zurich-quartiere/internal/style"
	"github.com/joeblew999/zurich-quartiere/internal/templates"
	"github.com/joeblew999/zurich-quartiere/internal/workflow"
)

// Handler renders the dashboard for the session named by the zm_session
// cookie.
type Handler struct {
	runner    *workflow.Runner
	sessions  *session.Store
	renderer  *templates.Renderer
	maxUpload int64
}

// NewHandler creates a dashboard handler. maxUpload bounds the multipart
// body of uploads in bytes.
func NewHandler(runner *workflow.Runner, sessions *session.Store, renderer *templates.Renderer, maxUpload int64) *Handler {
	return &Handler{runner: runner, sessions: sessions, renderer: renderer, maxUpload: maxUpload}
}

func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Post(api, "/api/v1/dashboard/render", h.Render, huma.OperationTags("dashboard"))
	huma.Post(api, "/api/v1/dashboard/upload", h.Upload, huma.OperationTags("dashboard"), func(o *huma.Operation) {
		if h.maxUpload > 0 {
			// multipart framing on top of the file itself
			o.MaxBodyBytes = h.maxUpload + 1<<20
		}
	})
	huma.Post(api, "/api/v1/dashboard/reset", h.Reset, huma.OperationTags("dashboard"))
}

type RenderInput struct {
	Session string `cookie:"zm_session" doc:"Dashboard session id"`
	humastar.SignalsInput
}

type UploadInput struct {
	Session string `cookie:"zm_session" doc:"Dashboard session id"`
	RawBody multipart.Form
}

type ResetInput struct {
	Session string `cookie:"zm_session" doc:"Dashboard session id"`
}

// Render applies the sidebar signals (path, column, basemap, scheme, labels)
// and re-renders #app.
func (h *Handler) Render(ctx context.Context, input *RenderInput) (*huma.StreamResponse, error) {
	signals, err := input.Parse()
	if err != nil {
		return nil, err
	}
	sess, cookie := h.session(input.Session)
	in := sess.Update(func(in *workflow.Input) {
		if signals.Has("path") {
			in.Path = signals.String("path")
		}
		if signals.Has("column") {
			in.Column = signals.String("column")
		}
		in.Selection = style.Selection{
			Basemap: signals.String("basemap"),
			Scheme:  signals.String("scheme"),
			Labels:  signals.Bool("labels"),
		}
	})
	return h.stream(ctx, in, cookie, ""), nil
}

// Upload keeps the posted file in the session and re-renders #app. A file
// with the wrong extension or size is reported but not kept.
func (h *Handler) Upload(ctx context.Context, input *UploadInput) (*huma.StreamResponse, error) {
	files := input.RawBody.File["file"]
	if len(files) == 0 {
		return nil, huma.Error400BadRequest("No file provided")
	}
	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return nil, huma.Error400BadRequest("Failed to open uploaded file")
	}
	defer f.Close()

	r := io.Reader(f)
	if h.maxUpload > 0 {
		r = io.LimitReader(f, h.maxUpload+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, huma.Error400BadRequest("Failed to read uploaded file")
	}

	upload := &workflow.Upload{Name: fh.Filename, Data: data}
	sess, cookie := h.session(input.Session)
	if err := h.checkUpload(upload); err != nil {
		in := sess.Input()
		in.Upload = upload
		return h.stream(ctx, in, cookie, ""), nil
	}
	in := sess.Update(func(in *workflow.Input) {
		in.Upload = upload
		in.Column = ""
	})
	notice := fmt.Sprintf(h.runner.Variant.Strings().UploadDone, fh.Filename)
	return h.stream(ctx, in, cookie, notice), nil
}

// checkUpload applies the loader's name and size rules before a file is
// kept in the session.
func (h *Handler) checkUpload(u *workflow.Upload) error {
	if err := geodata.CheckUploadName(u.Name); err != nil {
		return err
	}
	if h.maxUpload > 0 && int64(len(u.Data)) > h.maxUpload {
		return fmt.Errorf("%s exceeds %d bytes", u.Name, h.maxUpload)
	}
	return nil
}

// Reset forgets the session's upload and path.
func (h *Handler) Reset(ctx context.Context, input *ResetInput) (*huma.StreamResponse, error) {
	sess, cookie := h.session(input.Session)
	in := sess.Update(func(in *workflow.Input) {
		*in = workflow.Input{Selection: in.Selection}
	})
	return h.stream(ctx, in, cookie, ""), nil
}

// Page serves the full dashboard document.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	var id string
	if c, err := r.Cookie(session.CookieName); err == nil {
		id = c.Value
	}
	sess, cookie := h.session(id)
	if cookie != nil {
		http.SetCookie(w, cookie)
	}

	st := h.runner.Run(r.Context(), sess.Input())
	h.logFailure(st)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Page(w, st.View); err != nil {
		logger.L().Error("render page", "err", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// stream renders in and patches #app. notice is sent as a success signal
// when the pass rendered a map.
func (h *Handler) stream(ctx context.Context, in workflow.Input, cookie *http.Cookie, notice string) *huma.StreamResponse {
	st := h.runner.Run(ctx, in)
	h.logFailure(st)
	return humastar.Stream(func(sse humastar.SSE) {
		html, err := h.renderer.App(st.View)
		if err != nil {
			logger.L().Error("render app", "err", err)
			sse.Error("Failed to render page")
			return
		}
		sse.Replace(html, "#app")
		c := st.View.Controls
		sse.Signals(map[string]any{
			"path":    c.Path,
			"column":  c.Column,
			"basemap": c.Basemap,
			"scheme":  c.Scheme,
			"labels":  c.Labels,
			"success": "",
		})
		if notice != "" && st.View.Rendered() {
			sse.Success(notice)
		}
	}, cookie)
}

// session returns the session for id and, when a new one was created, the
// cookie that names it.
func (h *Handler) session(id string) (*session.Session, *http.Cookie) {
	sess, created := h.sessions.GetOrCreate(id)
	if !created {
		return sess, nil
	}
	return sess, &http.Cookie{
		Name:     session.CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *Handler) logFailure(st *workflow.State) {
	if st.View.Failed() {
		logger.L().Warn("load failed", "source", st.Source, "err", st.Err)
	}
}
