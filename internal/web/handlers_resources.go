package web

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/ameliadesk/internal/client"
	"github.com/JonMunkholm/ameliadesk/internal/core"
)

// ResourceInfo describes one configured resource.
type ResourceInfo struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	ListKey      string `json:"list_key"`
	ItemKey      string `json:"item_key"`
	Delete       string `json:"delete"`
	UpdateMethod string `json:"update_method"`
}

// ListResponse is a collection pulled out of its envelope.
type ListResponse struct {
	Resource string `json:"resource"`
	Count    int    `json:"count"`
	Items    []any  `json:"items"`
}

// ItemResponse carries one entity, or the whole upstream body when the
// resource's item envelope is absent.
type ItemResponse struct {
	Resource string `json:"resource"`
	Item     any    `json:"item"`
	Message  string `json:"message,omitempty"`
}

func (s *Server) handleListResources(w http.ResponseWriter, r *http.Request) {
	defs := s.service.Client().Resources()
	out := make([]ResourceInfo, 0, len(defs))
	for _, d := range defs {
		out = append(out, ResourceInfo{
			Name:         d.Name,
			Path:         d.Path,
			ListKey:      string(d.ListKey),
			ItemKey:      string(d.ItemKey),
			Delete:       string(d.Delete),
			UpdateMethod: d.UpdateMethod,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// resource resolves {resource}, writing a 404 when unknown.
func (s *Server) resource(w http.ResponseWriter, r *http.Request) (*client.ResourceClient, bool) {
	res, err := s.service.Resource(chi.URLParam(r, "resource"))
	if err != nil {
		s.respondError(w, r, err)
		return nil, false
	}
	return res, true
}

func (s *Server) handleResourceList(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resource(w, r)
	if !ok {
		return
	}

	result := res.List(r.Context(), r.URL.Query())
	if !result.OK() {
		s.respondError(w, r, result.Err)
		return
	}
	items, ok := res.Items(result)
	if !ok {
		s.respondError(w, r, core.ErrUnexpectedResponse)
		return
	}
	if items == nil {
		items = []any{}
	}
	writeJSON(w, http.StatusOK, ListResponse{Resource: res.Definition().Name, Count: len(items), Items: items})
}

func (s *Server) handleResourceGet(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resource(w, r)
	if !ok {
		return
	}
	s.writeItem(w, r, res, http.StatusOK, res.Get(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) handleResourceCreate(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resource(w, r)
	if !ok {
		return
	}
	var body map[string]any
	if err := s.decodeBody(w, r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeItem(w, r, res, http.StatusCreated, res.Create(r.Context(), body))
}

func (s *Server) handleResourceUpdate(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resource(w, r)
	if !ok {
		return
	}
	var body map[string]any
	if err := s.decodeBody(w, r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeItem(w, r, res, http.StatusOK, res.Update(r.Context(), chi.URLParam(r, "id"), body))
}

func (s *Server) handleResourceDelete(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resource(w, r)
	if !ok {
		return
	}
	s.writeItem(w, r, res, http.StatusOK, res.Delete(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) writeItem(w http.ResponseWriter, r *http.Request, res *client.ResourceClient, status int, result client.Result) {
	if !result.OK() {
		s.respondError(w, r, result.Err)
		return
	}
	resp := ItemResponse{Resource: res.Definition().Name, Item: result.Data}
	if item, ok := res.Item(result); ok {
		resp.Item = item
	}
	if m, ok := result.Extract("message"); ok {
		resp.Message, _ = m.(string)
	}
	writeJSON(w, status, resp)
}

// listParams copies query parameters, dropping the ones the handler consumed.
func listParams(q url.Values, consumed ...string) url.Values {
	out := url.Values{}
	for k, v := range q {
		out[k] = v
	}
	for _, k := range consumed {
		out.Del(k)
	}
	return out
}
