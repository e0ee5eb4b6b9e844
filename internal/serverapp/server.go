package serverapp

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/saharsh3008/task/internal/config"
	"github.com/saharsh3008/task/internal/httpmw"
	"github.com/saharsh3008/task/internal/reminder"
	"github.com/saharsh3008/task/internal/task"
	staticfiles "github.com/saharsh3008/task/static"
)

// HealthReporter reports the outcome of the most recent persistence write.
type HealthReporter interface {
	LastError() error
}

type Options struct {
	Config    *config.Config
	Tasks     *task.Handler
	Health    HealthReporter
	Reminders *reminder.History
	StaticDir string
	Version   string
	Logger    *log.Logger
}

func NewHandler(opts Options) (http.Handler, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Tasks == nil {
		return nil, errors.New("task handler is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if strings.TrimSpace(opts.StaticDir) == "" {
		opts.StaticDir = "static"
	}

	var saveErr func() error
	if opts.Health != nil {
		saveErr = opts.Health.LastError
	}

	r := chi.NewRouter()
	r.Use(httpmw.Stack(opts.Logger, saveErr)...)

	staticHandler := http.FileServer(http.FS(staticfiles.EmbeddedFS()))
	if UseDiskStaticByEnv() {
		staticHandler = http.FileServer(http.Dir(opts.StaticDir))
	}
	r.Handle("/static/*", http.StripPrefix("/static/", staticHandler))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "taskdeck",
			"version": opts.Version,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Health != nil {
			if err := opts.Health.LastError(); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]any{
					"ok":    false,
					"error": "task storage unavailable: " + err.Error(),
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "taskdeck",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Route("/api", func(r chi.Router) {
		opts.Tasks.Routes(r)

		r.Get("/reminders", func(w http.ResponseWriter, r *http.Request) {
			if opts.Reminders == nil {
				writeJSON(w, http.StatusOK, []reminder.Delivery{})
				return
			}
			var since time.Time
			if v := r.URL.Query().Get("since"); v != "" {
				t, err := time.Parse(time.RFC3339, v)
				if err != nil {
					writeJSON(w, http.StatusBadRequest, map[string]any{"error": "since must be RFC3339"})
					return
				}
				since = t
			}
			writeJSON(w, http.StatusOK, opts.Reminders.Since(since))
		})

		r.Get("/config", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(opts.Config); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		})
	})

	r.Get("/", agendaHandler(opts.Tasks, opts.Reminders))

	return r, nil
}

// UseDiskStaticByEnv serves static assets from disk instead of the embedded
// copy, for editing CSS without rebuilding.
func UseDiskStaticByEnv() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TASKDECK_DEV_STATIC"))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
