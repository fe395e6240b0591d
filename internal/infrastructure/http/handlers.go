// ABOUTME: HTTP handlers for followed Snapcast servers
// ABOUTME: Serves health, server listing, now-playing, history, and ICY block routes
package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harper/snapmeta/internal/domain/notification"
	"github.com/harper/snapmeta/internal/domain/nowplaying"
	"github.com/harper/snapmeta/internal/infrastructure/icy"
)

// Servers is the read side of the server manager used by the API.
type Servers interface {
	List() []*nowplaying.Tracker
	Get(id string) *nowplaying.Tracker
}

type handlers struct {
	servers Servers
}

type serverInfo struct {
	ID        string `json:"id"`
	Addr      string `json:"addr"`
	Connected bool   `json:"connected"`
	Status    string `json:"status,omitempty"`
	Title     string `json:"title,omitempty"`
	MetaURL   string `json:"meta_url"`
}

type metaResponse struct {
	ID              string                `json:"id"`
	Connected       bool                  `json:"connected"`
	Session         string                `json:"session,omitempty"`
	Status          string                `json:"status,omitempty"`
	StatusUpdatedAt *string               `json:"status_updated_at,omitempty"`
	Title           string                `json:"title"`
	ArtURL          string                `json:"art_url,omitempty"`
	Metadata        notification.Metadata `json:"metadata,omitempty"`
	UpdatedAt       *string               `json:"updated_at,omitempty"`
	LastError       string                `json:"last_error,omitempty"`
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	type response struct {
		OK        bool `json:"ok"`
		Servers   int  `json:"servers"`
		Connected int  `json:"connected"`
	}

	resp := response{OK: true}
	for _, t := range h.servers.List() {
		resp.Servers++
		if t.Connected() {
			resp.Connected++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) listServers(w http.ResponseWriter, r *http.Request) {
	trackers := h.servers.List()
	result := make([]serverInfo, 0, len(trackers))

	for _, t := range trackers {
		info := serverInfo{
			ID:        t.ID(),
			Addr:      addr(t),
			Connected: t.Connected(),
			Status:    t.Status(),
			MetaURL:   "/servers/" + t.ID() + "/meta",
		}
		if cur := t.Current(); cur != nil {
			info.Title = cur.Title
		}
		result = append(result, info)
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) meta(w http.ResponseWriter, r *http.Request) {
	t := h.tracker(w, r)
	if t == nil {
		return
	}

	resp := metaResponse{
		ID:              t.ID(),
		Connected:       t.Connected(),
		Session:         t.Session(),
		Status:          t.Status(),
		StatusUpdatedAt: formatTime(t.StatusUpdatedAt()),
		LastError:       t.LastError(),
	}
	if cur := t.Current(); cur != nil {
		resp.Title = cur.Title
		resp.ArtURL = cur.ArtURL
		resp.Metadata = cur.Metadata
		resp.UpdatedAt = formatTime(&cur.At)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	t := h.tracker(w, r)
	if t == nil {
		return
	}
	writeJSON(w, http.StatusOK, t.History())
}

// icyBlock returns the current title as a single ICY metadata block, ready to
// splice into a Shoutcast stream.
func (h *handlers) icyBlock(w http.ResponseWriter, r *http.Request) {
	t := h.tracker(w, r)
	if t == nil {
		return
	}

	var title, url string
	if cur := t.Current(); cur != nil {
		title, url = cur.Title, cur.ArtURL
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(icy.Block(icy.Text(title, url)))
}

func (h *handlers) tracker(w http.ResponseWriter, r *http.Request) *nowplaying.Tracker {
	t := h.servers.Get(chi.URLParam(r, "id"))
	if t == nil {
		writeJSONError(w, http.StatusNotFound, "unknown server")
	}
	return t
}

func addr(t *nowplaying.Tracker) string {
	return t.Host() + ":" + strconv.Itoa(t.Port())
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
