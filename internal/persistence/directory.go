package persistence

import (
	"context"
	"fmt"
	"strings"

	"gasreport/pkg/domain"
)

// Directory stores clients, sites and technicians as records of the report
// repository. Clients and technicians are top-level; sites hang under their
// client.
type Directory struct {
	repo domain.Repository
}

var _ domain.Directory = (*Directory)(nil)

// NewDirectory wraps repo.
func NewDirectory(repo domain.Repository) *Directory {
	return &Directory{repo: repo}
}

// ListClients returns every client in insertion order.
func (d *Directory) ListClients(ctx context.Context) ([]domain.Client, error) {
	recs, err := d.repo.FindChildren(ctx, domain.KindClient, "")
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	out := make([]domain.Client, 0, len(recs))
	for _, rec := range recs {
		out = append(out, domain.Client{ID: rec.ID, Name: str(rec.Fields, "name")})
	}
	return out, nil
}

// ListSites returns the sites of clientID.
func (d *Directory) ListSites(ctx context.Context, clientID string) ([]domain.Site, error) {
	recs, err := d.repo.FindChildren(ctx, domain.KindSite, clientID)
	if err != nil {
		return nil, fmt.Errorf("list sites of %s: %w", clientID, err)
	}
	out := make([]domain.Site, 0, len(recs))
	for _, rec := range recs {
		out = append(out, domain.Site{
			ID:       rec.ID,
			ClientID: rec.ParentID,
			Name:     str(rec.Fields, "name"),
			Address:  str(rec.Fields, "address"),
		})
	}
	return out, nil
}

// ListTechnicians returns every technician in insertion order.
func (d *Directory) ListTechnicians(ctx context.Context) ([]domain.Technician, error) {
	recs, err := d.repo.FindChildren(ctx, domain.KindTechnician, "")
	if err != nil {
		return nil, fmt.Errorf("list technicians: %w", err)
	}
	out := make([]domain.Technician, 0, len(recs))
	for _, rec := range recs {
		out = append(out, domain.Technician{ID: rec.ID, Name: str(rec.Fields, "name")})
	}
	return out, nil
}

// AddClient inserts a client and returns it with its store identifier.
func (d *Directory) AddClient(ctx context.Context, name string) (domain.Client, error) {
	name, err := required("client name", name)
	if err != nil {
		return domain.Client{}, err
	}
	id, err := d.repo.Insert(ctx, domain.KindClient, "", domain.Fields{"name": name})
	if err != nil {
		return domain.Client{}, fmt.Errorf("add client %q: %w", name, err)
	}
	return domain.Client{ID: id, Name: name}, nil
}

// AddSite inserts a site under an existing client.
func (d *Directory) AddSite(ctx context.Context, clientID, name, address string) (domain.Site, error) {
	name, err := required("site name", name)
	if err != nil {
		return domain.Site{}, err
	}
	if _, ok, err := d.repo.FindOne(ctx, domain.KindClient, clientID); err != nil {
		return domain.Site{}, fmt.Errorf("load client %s: %w", clientID, err)
	} else if !ok {
		return domain.Site{}, domain.ErrNotFound{Kind: domain.KindClient, ID: clientID}
	}
	fields := domain.Fields{"name": name, "address": strings.TrimSpace(address)}
	id, err := d.repo.Insert(ctx, domain.KindSite, clientID, fields)
	if err != nil {
		return domain.Site{}, fmt.Errorf("add site %q: %w", name, err)
	}
	return domain.Site{ID: id, ClientID: clientID, Name: name, Address: fields["address"].(string)}, nil
}

// AddTechnician inserts a technician.
func (d *Directory) AddTechnician(ctx context.Context, name string) (domain.Technician, error) {
	name, err := required("technician name", name)
	if err != nil {
		return domain.Technician{}, err
	}
	id, err := d.repo.Insert(ctx, domain.KindTechnician, "", domain.Fields{"name": name})
	if err != nil {
		return domain.Technician{}, fmt.Errorf("add technician %q: %w", name, err)
	}
	return domain.Technician{ID: id, Name: name}, nil
}

func required(what, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("%s is required", what)
	}
	return v, nil
}

func str(f domain.Fields, key string) string {
	s, _ := f[key].(string)
	return s
}
