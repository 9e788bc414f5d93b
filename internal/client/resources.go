package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/JonMunkholm/ameliadesk/internal/config"
)

// DeleteStyle selects how a resource is deleted. Older API versions only
// accept POST /{path}/delete/{id}; newer ones take the DELETE verb.
type DeleteStyle string

const (
	DeletePostPath DeleteStyle = "post_path"
	DeleteVerb     DeleteStyle = "verb"
)

// Resource describes one remote entity type and where its payload sits
// inside the response envelope.
type Resource struct {
	Name         string
	Path         string
	ListKey      Envelope
	ItemKey      Envelope
	Delete       DeleteStyle
	UpdateMethod string
}

// DefaultResources returns the resource table observed on the Amelia API.
func DefaultResources() []Resource {
	return []Resource{
		{Name: "categories", Path: "/categories", ListKey: "data.categories", ItemKey: "data.category"},
		{Name: "appointments", Path: "/appointments", ListKey: "data.appointments", ItemKey: "data.appointment"},
		{Name: "customers", Path: "/users/customers", ListKey: "data.users", ItemKey: "data.user"},
		{Name: "employees", Path: "/users/providers", ListKey: "data.users", ItemKey: "data.user"},
		{Name: "services", Path: "/services", ListKey: "data.services", ItemKey: "data.service"},
		{Name: "locations", Path: "/locations", ListKey: "data.locations", ItemKey: "data.location"},
		{Name: "extras", Path: "/extras", ListKey: "data.extras", ItemKey: "data.extra"},
		{Name: "coupons", Path: "/coupons", ListKey: "data.coupons", ItemKey: "data.coupon"},
		{Name: "events", Path: "/events", ListKey: "data.events", ItemKey: "data.event"},
		{Name: "packages", Path: "/packages", ListKey: "data.packages", ItemKey: "data.package"},
		{Name: "custom_fields", Path: "/fields", ListKey: "data.customFields", ItemKey: "data.customField"},
	}
}

// ApplyProfile merges profile overrides into base. Known resources keep
// their built-in values for fields the override leaves empty; unknown names
// are added and must carry a path.
func ApplyProfile(base []Resource, p *config.ResourceProfile) ([]Resource, error) {
	if p == nil {
		return base, nil
	}

	byName := make(map[string]Resource, len(base))
	order := make([]string, 0, len(base))
	for _, r := range base {
		byName[r.Name] = r
		order = append(order, r.Name)
	}

	for _, o := range p.Resources {
		r, known := byName[o.Name]
		if !known {
			if o.Path == "" {
				return nil, fmt.Errorf("resource %q: path is required for new resources", o.Name)
			}
			r = Resource{Name: o.Name}
			order = append(order, o.Name)
		}
		if o.Path != "" {
			r.Path = o.Path
		}
		if o.ListKey != "" {
			r.ListKey = profileEnvelope(o.ListKey)
		}
		if o.ItemKey != "" {
			r.ItemKey = profileEnvelope(o.ItemKey)
		}
		if o.Delete != "" {
			r.Delete = DeleteStyle(o.Delete)
		}
		if o.UpdateMethod != "" {
			r.UpdateMethod = o.UpdateMethod
		}
		byName[o.Name] = r
	}

	out := make([]Resource, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out, nil
}

// profileEnvelope reads an envelope key from a profile, where "." selects
// the whole body.
func profileEnvelope(key string) Envelope {
	if key == "." {
		return ""
	}
	return Envelope(key)
}

// Resources returns the configured resources sorted by name.
func (c *Client) Resources() []Resource {
	out := make([]Resource, 0, len(c.resources))
	for _, r := range c.resources {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Resource returns a handle for the named resource.
func (c *Client) Resource(name string) (*ResourceClient, bool) {
	r, ok := c.resources[name]
	if !ok {
		return nil, false
	}
	return &ResourceClient{c: c, def: r}, true
}

// ResourceClient performs CRUD calls against one resource.
type ResourceClient struct {
	c   *Client
	def Resource
}

// Definition returns the resource definition.
func (r *ResourceClient) Definition() Resource {
	return r.def
}

// List fetches the collection; params are passed through as query string.
func (r *ResourceClient) List(ctx context.Context, params url.Values) Result {
	return r.c.Do(ctx, http.MethodGet, r.def.Path, nil, params)
}

// Get fetches one entity.
func (r *ResourceClient) Get(ctx context.Context, id string) Result {
	return r.c.Do(ctx, http.MethodGet, r.def.Path+"/"+url.PathEscape(id), nil, nil)
}

// Create posts a new entity.
func (r *ResourceClient) Create(ctx context.Context, body any) Result {
	return r.c.Do(ctx, http.MethodPost, r.def.Path, body, nil)
}

// Update modifies an entity. The API historically updates with POST.
func (r *ResourceClient) Update(ctx context.Context, id string, body any) Result {
	method := r.def.UpdateMethod
	if method == "" {
		method = http.MethodPost
	}
	return r.c.Do(ctx, method, r.def.Path+"/"+url.PathEscape(id), body, nil)
}

// Delete removes an entity using the resource's delete style.
func (r *ResourceClient) Delete(ctx context.Context, id string) Result {
	if r.def.Delete == DeleteVerb {
		return r.c.Do(ctx, http.MethodDelete, r.def.Path+"/"+url.PathEscape(id), nil, nil)
	}
	return r.c.Do(ctx, http.MethodPost, r.def.Path+"/delete/"+url.PathEscape(id), nil, nil)
}

// Items returns the collection inside a List result.
func (r *ResourceClient) Items(res Result) ([]any, bool) {
	if !res.OK() {
		return nil, false
	}
	return r.def.ListKey.Items(res.Data)
}

// Item returns the single entity inside a Get or Create result.
func (r *ResourceClient) Item(res Result) (map[string]any, bool) {
	v, ok := res.Extract(r.def.ItemKey)
	if !ok {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	return obj, ok
}

// UpdateAppointmentStatus changes the status of an appointment.
func (c *Client) UpdateAppointmentStatus(ctx context.Context, id, status string) Result {
	return c.Do(ctx, http.MethodPost, "/appointments/status/"+url.PathEscape(id), map[string]string{"status": status}, nil)
}

// DateRange formats the "dates" filter used by list endpoints.
func DateRange(from, to time.Time) string {
	return from.Format("2006-01-02") + ":" + to.Format("2006-01-02")
}
