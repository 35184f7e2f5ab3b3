package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/jdholdren/vaultfeed/internal/catalog"
	vferrs "github.com/jdholdren/vaultfeed/internal/errors"
	"github.com/jdholdren/vaultfeed/internal/registry"
	"github.com/jdholdren/vaultfeed/internal/serverutil"
	"github.com/jdholdren/vaultfeed/internal/vaultfeed"
)

type FeedsResp struct {
	Topics []registry.Topic `json:"topics"`
}

func (s *Server) getFeeds(w http.ResponseWriter, r *http.Request) error {
	return serverutil.WriteJSON(w, http.StatusOK, FeedsResp{Topics: s.cat.Topics()})
}

type PostFeedReq struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Topic string `json:"topic"`
}

func (s *Server) postFeed(w http.ResponseWriter, r *http.Request) error {
	var body PostFeedReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return vferrs.E(err, http.StatusBadRequest)
	}

	feed, err := s.cat.AddFeed(r.Context(), body.Name, body.URL, body.Topic)
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusCreated, feed)
}

func (s *Server) deleteFeed(w http.ResponseWriter, r *http.Request) error {
	id := mux.Vars(r)["id"]

	if err := s.cat.RemoveFeed(r.Context(), id); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

type PatchFeedReq struct {
	Topic string `json:"topic"`
}

func (s *Server) patchFeed(w http.ResponseWriter, r *http.Request) error {
	id := mux.Vars(r)["id"]

	var body PatchFeedReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return vferrs.E(err, http.StatusBadRequest)
	}

	if err := s.cat.RetopicFeed(r.Context(), id, body.Topic); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Server) getExport(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Disposition", `attachment; filename="vaultfeed-export.json"`)
	return serverutil.WriteJSON(w, http.StatusOK, s.cat.Export())
}

// ImportReq uses pointers so an absent field is distinguishable from an
// empty one: both fields must be present for the import to be accepted.
type ImportReq struct {
	Feeds         *[]vaultfeed.Feed `json:"feeds"`
	SavedArticles *[]string         `json:"savedArticles"`
}

func (req ImportReq) Validate() error {
	var details []vferrs.Detail
	if req.Feeds == nil {
		details = append(details, vferrs.Detail{Field: "feeds", Error: "is required"})
	}
	if req.SavedArticles == nil {
		details = append(details, vferrs.Detail{Field: "savedArticles", Error: "is required"})
	}
	if req.Feeds != nil {
		for _, f := range *req.Feeds {
			if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.URL) == "" {
				details = append(details, vferrs.Detail{Field: "feeds", Error: "every feed needs a name and url"})
				break
			}
		}
	}
	if len(details) > 0 {
		return vferrs.E("invalid import document", http.StatusBadRequest, details)
	}

	return nil
}

func (s *Server) postImport(w http.ResponseWriter, r *http.Request) error {
	body, err := serverutil.DecodeValid[ImportReq](r.Body)
	if err != nil {
		// Decode failures and shape failures alike reject the import
		// before anything is touched.
		vfErr := &vferrs.Error{}
		if errors.As(err, &vfErr) {
			return vfErr
		}
		return vferrs.E(err, http.StatusBadRequest)
	}

	if err := s.cat.Import(r.Context(), catalog.ExportDoc{
		Feeds:         *body.Feeds,
		SavedArticles: *body.SavedArticles,
	}); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
