package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jdholdren/vaultfeed/internal/catalog"
	vferrs "github.com/jdholdren/vaultfeed/internal/errors"
	"github.com/jdholdren/vaultfeed/internal/serverutil"
	"github.com/jdholdren/vaultfeed/internal/vaultfeed"
)

type RefreshResp struct {
	Outcomes []catalog.RefreshOutcome `json:"outcomes"`
}

func (s *Server) postRefresh(w http.ResponseWriter, r *http.Request) error {
	outcomes := s.cat.Refresh(r.Context())
	return serverutil.WriteJSON(w, http.StatusOK, RefreshResp{Outcomes: outcomes})
}

type ArticlesResp struct {
	Articles    []vaultfeed.Article `json:"articles"`
	Scope       string              `json:"scope"`
	Search      string              `json:"search"`
	EmptyReason catalog.EmptyReason `json:"emptyReason,omitempty"`
	SavedLinks  []string            `json:"savedLinks"`
	ReadLinks   []string            `json:"readLinks"`
}

func (s *Server) getArticles(w http.ResponseWriter, r *http.Request) error {
	params := r.URL.Query()

	// The unread toggle defaults to the stored preference unless the
	// query spells it out.
	unread := s.cat.Preferences().ShowUnreadOnly
	if raw := params.Get("unread"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return vferrs.E("unread must be a boolean", http.StatusBadRequest)
		}
		unread = parsed
	}

	view := s.cat.View(catalog.Query{
		Scope:      params.Get("scope"),
		Search:     params.Get("q"),
		UnreadOnly: unread,
	})

	saved := s.cat.SavedLinks()
	savedLinks := make([]string, 0, len(saved))
	for l := range saved {
		savedLinks = append(savedLinks, l)
	}

	return serverutil.WriteJSON(w, http.StatusOK, ArticlesResp{
		Articles:    view.Articles,
		Scope:       view.Scope,
		Search:      view.Search,
		EmptyReason: view.Reason,
		SavedLinks:  savedLinks,
		ReadLinks:   s.cat.ReadLinks(),
	})
}

type LinkReq struct {
	Link string `json:"link"`
}

func decodeLink(r *http.Request) (string, error) {
	var body LinkReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return "", vferrs.E(err, http.StatusBadRequest)
	}
	if body.Link == "" {
		return "", vferrs.E("link is required", http.StatusBadRequest)
	}
	return body.Link, nil
}

func (s *Server) postSelect(w http.ResponseWriter, r *http.Request) error {
	link, err := decodeLink(r)
	if err != nil {
		return err
	}

	if err := s.cat.Select(r.Context(), link); err != nil {
		return err
	}

	content, err := s.cat.Selection()
	if err != nil {
		return err
	}
	return serverutil.WriteJSON(w, http.StatusOK, content)
}

func (s *Server) getContent(w http.ResponseWriter, r *http.Request) error {
	content, err := s.cat.Selection()
	if err != nil {
		return err
	}
	return serverutil.WriteJSON(w, http.StatusOK, content)
}

func (s *Server) postRead(w http.ResponseWriter, r *http.Request) error {
	link, err := decodeLink(r)
	if err != nil {
		return err
	}

	if err := s.cat.MarkRead(r.Context(), link); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

type ReadAllReq struct {
	Scope  string `json:"scope"`
	Search string `json:"q"`
	Unread bool   `json:"unread"`
}

type ReadAllResp struct {
	Marked int `json:"marked"`
}

// postReadAll marks everything passing the filter pipeline as read, not
// the whole catalog.
func (s *Server) postReadAll(w http.ResponseWriter, r *http.Request) error {
	var body ReadAllReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return vferrs.E(err, http.StatusBadRequest)
	}

	marked, err := s.cat.MarkAllVisible(r.Context(), catalog.Query{
		Scope:      body.Scope,
		Search:     body.Search,
		UnreadOnly: body.Unread,
	})
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, ReadAllResp{Marked: marked})
}

type SaveResp struct {
	Link  string `json:"link"`
	Saved bool   `json:"saved"`
}

func (s *Server) postSave(w http.ResponseWriter, r *http.Request) error {
	link, err := decodeLink(r)
	if err != nil {
		return err
	}

	saved, err := s.cat.ToggleSaved(r.Context(), link)
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, SaveResp{Link: link, Saved: saved})
}

type SummarizeReq struct {
	Text string `json:"text"`
}

type SummarizeResp struct {
	Summary string `json:"summary"`
}

func (s *Server) postSummarize(w http.ResponseWriter, r *http.Request) error {
	var body SummarizeReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return vferrs.E(err, http.StatusBadRequest)
	}

	summ, err := s.summarizer.Summarize(r.Context(), body.Text)
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, SummarizeResp{Summary: summ})
}

func (s *Server) getPreferences(w http.ResponseWriter, r *http.Request) error {
	return serverutil.WriteJSON(w, http.StatusOK, s.cat.Preferences())
}

// patchPreferences merges the request over the current preferences:
// absent fields keep their values.
func (s *Server) patchPreferences(w http.ResponseWriter, r *http.Request) error {
	prefs := s.cat.Preferences()
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		return vferrs.E(err, http.StatusBadRequest)
	}

	updated, err := s.cat.UpdatePreferences(r.Context(), prefs)
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, updated)
}
