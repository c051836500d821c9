package repository

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/sediment-tracker/internal/entity"
)

const (
	censoredPrefix = "CENS_"
	unnamedSite    = "UNNAMED_SITE"
)

// siteKey derives the stored identity of a site. Reports without a site code
// get a censored code built from the work order.
func siteKey(md entity.Metadata) (code, name string, censored bool) {
	name = unnamedSite
	if md.SiteName != nil && *md.SiteName != "" {
		name = *md.SiteName
	}
	if md.SiteCode == nil || *md.SiteCode == "" {
		return censoredPrefix + md.WorkOrder, name, true
	}
	return *md.SiteCode, name, false
}

// upsertSite returns the id of the site with md's code, creating it if needed.
// Known names and categories overwrite stored ones.
func upsertSite(ctx context.Context, q querier, d string, md entity.Metadata, now time.Time) (uuid.UUID, error) {
	code, name, censored := siteKey(md)
	ts := now.UTC().Format(time.RFC3339)

	var raw string
	sel := entsql.Dialect(d).Select("id").From(entsql.Table("sites")).Where(entsql.EQ("code", code))
	err := scanAll(ctx, q, sel, func(rows *entsql.Rows) error { return rows.Scan(&raw) })
	if err != nil {
		return uuid.Nil, err
	}

	if raw == "" {
		id := uuid.New()
		ins := entsql.Dialect(d).Insert("sites").
			Columns("id", "code", "name", "category", "censored", "created_at", "updated_at").
			Values(id.String(), code, name, nullable(md.Category), censored, ts, ts)
		return id, execB(ctx, q, ins)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("site %s has malformed id %q: %w", code, raw, err)
	}

	upd := entsql.Dialect(d).Update("sites").Set("updated_at", ts).Where(entsql.EQ("id", raw))
	if name != unnamedSite {
		upd.Set("name", name)
	}
	if md.Category != nil {
		upd.Set("category", *md.Category)
	}
	return id, execB(ctx, q, upd)
}
