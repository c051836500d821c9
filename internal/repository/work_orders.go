package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/sediment-tracker/constants"
	"github.com/joseph-ayodele/sediment-tracker/internal/common"
	"github.com/joseph-ayodele/sediment-tracker/internal/compliance"
	"github.com/joseph-ayodele/sediment-tracker/internal/entity"
)

// SaveResult describes what Save stored.
type SaveResult struct {
	WorkOrderID uuid.UUID
	Version     int
	Replaced    int // versions deleted by the UPDATE policy
	Stations    int
	Organic     int
	PhRedox     int
	Issues      int
}

// WorkOrderSummary is one stored report version.
type WorkOrderSummary struct {
	Code        string
	Version     int
	SiteCode    string
	Diagnosis   constants.SiteCondition
	NeedsReview bool
	SourceFile  string
	CreatedAt   string
}

type WorkOrderRepository interface {
	Save(ctx context.Context, res entity.Result, policy constants.DuplicatePolicy) (SaveResult, error)
	Versions(ctx context.Context, code string) ([]int, error)
	List(ctx context.Context) ([]WorkOrderSummary, error)
	Counts(ctx context.Context) (map[string]int, error)
}

type workOrderRepo struct {
	db         *DB
	thresholds compliance.Thresholds
	logger     *slog.Logger
	now        func() time.Time
}

// NewWorkOrderRepository stores results; thresholds drive the per-replicate flags.
func NewWorkOrderRepository(db *DB, thresholds compliance.Thresholds, logger *slog.Logger) WorkOrderRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &workOrderRepo{db: db, thresholds: thresholds, logger: logger, now: time.Now}
}

// Save writes one document in a single transaction, applying policy when the
// work order is already stored.
func (r *workOrderRepo) Save(ctx context.Context, res entity.Result, policy constants.DuplicatePolicy) (out SaveResult, err error) {
	code := res.Metadata.WorkOrder
	logger := r.logger.With("work_order", code, "policy", policy)

	tx, err := r.db.drv.Tx(ctx)
	if err != nil {
		return SaveResult{}, common.NewAppError(common.CodeDatabase, "begin transaction", errors.Join(common.ErrDatabase, err))
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				logger.Error("rollback failed", "error", rerr)
			}
		}
	}()

	existing, err := versions(ctx, tx, r.db.Dialect(), code)
	if err != nil {
		return SaveResult{}, r.dbErr("load versions", err)
	}

	out.Version = 1
	if len(existing) > 0 {
		latest := existing[len(existing)-1]
		switch policy {
		case constants.PolicyUpdate:
			del := entsql.Dialect(r.db.Dialect()).Delete("work_orders").Where(entsql.EQ("code", code))
			if err = execB(ctx, tx, del); err != nil {
				return SaveResult{}, r.dbErr("delete previous versions", err)
			}
			out.Replaced = len(existing)
			out.Version = latest
		case constants.PolicyVersion:
			out.Version = latest + 1
		default:
			err = common.NewAppError(common.CodeDuplicate, fmt.Sprintf("work order %s already stored (version %d)", code, latest), common.ErrDuplicate)
			return SaveResult{}, err
		}
	}

	now := r.now()
	siteID, err := upsertSite(ctx, tx, r.db.Dialect(), res.Metadata, now)
	if err != nil {
		return SaveResult{}, r.dbErr("upsert site", err)
	}

	out.WorkOrderID = uuid.New()
	if err = r.insertWorkOrder(ctx, tx, out.WorkOrderID, siteID, out.Version, res, now); err != nil {
		return SaveResult{}, r.dbErr("insert work order", err)
	}
	stationIDs, err := r.insertStations(ctx, tx, out.WorkOrderID, res)
	if err != nil {
		return SaveResult{}, r.dbErr("insert stations", err)
	}
	if err = r.insertReplicates(ctx, tx, out.WorkOrderID, stationIDs, res); err != nil {
		return SaveResult{}, r.dbErr("insert replicates", err)
	}
	if err = r.insertIssues(ctx, tx, out.WorkOrderID, res.Issues); err != nil {
		return SaveResult{}, r.dbErr("insert issues", err)
	}

	if err = tx.Commit(); err != nil {
		return SaveResult{}, r.dbErr("commit", err)
	}

	out.Stations = len(stationIDs)
	out.Organic = len(res.OrganicMatter)
	out.PhRedox = len(res.PhRedox)
	out.Issues = len(res.Issues)
	logger.Info("work order stored",
		"version", out.Version,
		"replaced", out.Replaced,
		"stations", out.Stations,
		"organic_matter", out.Organic,
		"ph_redox", out.PhRedox,
	)
	return out, nil
}

func (r *workOrderRepo) dbErr(op string, err error) error {
	r.logger.Error("store failed", "op", op, "error", err)
	return common.NewAppError(common.CodeDatabase, op, errors.Join(common.ErrDatabase, err))
}

func versions(ctx context.Context, q querier, d, code string) ([]int, error) {
	var out []int
	sel := entsql.Dialect(d).Select("version").From(entsql.Table("work_orders")).Where(entsql.EQ("code", code))
	err := scanAll(ctx, q, sel, func(rows *entsql.Rows) error {
		var v int
		if err := rows.Scan(&v); err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	sort.Ints(out)
	return out, err
}

func (r *workOrderRepo) insertWorkOrder(ctx context.Context, q querier, id, siteID uuid.UUID, version int, res entity.Result, now time.Time) error {
	md, dg := res.Metadata, res.Diagnosis
	var ocrFields any
	if len(md.OCRFields) > 0 {
		ocrFields = strings.Join(md.OCRFields, ",")
	}
	ins := entsql.Dialect(r.db.Dialect()).Insert("work_orders").
		Columns(
			"id", "code", "version", "site_id", "source_file", "report_kind",
			"monitoring_type", "sampling_date", "intake_date", "responsible", "reported_condition",
			"diagnosis", "is_anaerobic", "organic_matter_violations", "ph_redox_violations",
			"violation_threshold", "total_stations", "applied_monitoring_type",
			"organic_matter_max", "ph_min", "eh_min", "needs_review", "ocr_fields", "created_at",
		).
		Values(
			id.String(), md.WorkOrder, version, siteID.String(), md.SourceFile, string(md.ReportKind),
			nullableString(md.MonitoringType), nullable(md.SamplingDate), nullable(md.IntakeDate), nullable(md.Responsible), nullableString(md.SiteCondition),
			string(dg.Condition()), dg.IsAnaerobic, dg.OrganicMatterViolations, dg.PhRedoxViolations,
			dg.ViolationThreshold, dg.TotalStations, string(dg.MonitoringType),
			dg.Thresholds.OrganicMatterMax, dg.Thresholds.PHMin, dg.Thresholds.EhMin, res.NeedsReview, ocrFields,
			now.UTC().Format(time.RFC3339),
		)
	return execB(ctx, q, ins)
}

func (r *workOrderRepo) insertStations(ctx context.Context, q querier, workOrderID uuid.UUID, res entity.Result) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(res.Stations))
	for _, s := range res.Stations {
		id := uuid.New()
		var omAvg, phAvg, ehAvg, redoxAvg, tempAvg any
		omN, phN := 0, 0
		if a, ok := res.OrganicAverageFor(s.Code); ok {
			omAvg, omN = a.Percentage, a.Replicas
		}
		if a, ok := res.PhRedoxAverageFor(s.Code); ok {
			phAvg, ehAvg, redoxAvg, tempAvg = nullable(a.PH), nullable(a.EhMV), nullable(a.RedoxMV), nullable(a.TemperatureC)
			phN = a.Replicas
		}
		ins := entsql.Dialect(r.db.Dialect()).Insert("stations").
			Columns("id", "work_order_id", "code", "utm_easting", "utm_northing", "depth_m",
				"organic_matter_avg", "organic_matter_replicas", "ph_avg", "eh_avg", "redox_avg", "temperature_avg", "ph_redox_replicas").
			Values(id.String(), workOrderID.String(), s.Code, nullable(s.UTMEasting), nullable(s.UTMNorthing), nullable(s.DepthM),
				omAvg, omN, phAvg, ehAvg, redoxAvg, tempAvg, phN)
		if err := execB(ctx, q, ins); err != nil {
			return nil, err
		}
		ids[s.Code] = id
	}
	return ids, nil
}

// insertReplicates writes replicate rows; a replicate whose station is missing
// from the station set gets one created so no code is dropped.
func (r *workOrderRepo) insertReplicates(ctx context.Context, q querier, workOrderID uuid.UUID, stationIDs map[string]uuid.UUID, res entity.Result) error {
	stationID := func(code string) (uuid.UUID, error) {
		if id, ok := stationIDs[code]; ok {
			return id, nil
		}
		id := uuid.New()
		ins := entsql.Dialect(r.db.Dialect()).Insert("stations").
			Columns("id", "work_order_id", "code").Values(id.String(), workOrderID.String(), code)
		if err := execB(ctx, q, ins); err != nil {
			return uuid.Nil, err
		}
		stationIDs[code] = id
		return id, nil
	}

	mt := res.Metadata.EffectiveMonitoringType()
	for _, m := range res.OrganicMatter {
		sid, err := stationID(m.Station)
		if err != nil {
			return err
		}
		flags := r.thresholds.OrganicFlags(m.Percentage)
		ins := entsql.Dialect(r.db.Dialect()).Insert("organic_matter").
			Columns("id", "work_order_id", "station_id", "sample_code", "replica", "weight_g", "percentage", "within_infa", "within_post_anaerobic").
			Values(uuid.NewString(), workOrderID.String(), sid.String(), m.SampleCode(), m.Replica, m.WeightG, m.Percentage, flags.WithinINFA, flags.WithinPostAnaerobic)
		if err := execB(ctx, q, ins); err != nil {
			return err
		}
	}
	for _, m := range res.PhRedox {
		sid, err := stationID(m.Station)
		if err != nil {
			return err
		}
		flags := r.thresholds.PhRedoxFlags(m, mt)
		ins := entsql.Dialect(r.db.Dialect()).Insert("ph_redox").
			Columns("id", "work_order_id", "station_id", "sample_code", "replica", "ph", "redox_mv", "eh_mv", "temperature_c", "ph_ok", "eh_ok", "joint_ok").
			Values(uuid.NewString(), workOrderID.String(), sid.String(), m.SampleCode(), m.Replica,
				nullable(m.PH), nullable(m.RedoxMV), nullable(m.EhMV), nullable(m.TemperatureC),
				nullable(flags.PHOK), nullable(flags.EhOK), nullable(flags.JointOK))
		if err := execB(ctx, q, ins); err != nil {
			return err
		}
	}
	return nil
}

func (r *workOrderRepo) insertIssues(ctx context.Context, q querier, workOrderID uuid.UUID, issues []entity.Issue) error {
	for _, i := range issues {
		ins := entsql.Dialect(r.db.Dialect()).Insert("validation_issues").
			Columns("id", "work_order_id", "severity", "field", "subject", "message").
			Values(uuid.NewString(), workOrderID.String(), string(i.Severity), i.Field, i.Subject, i.Message)
		if err := execB(ctx, q, ins); err != nil {
			return err
		}
	}
	return nil
}

func (r *workOrderRepo) Versions(ctx context.Context, code string) ([]int, error) {
	v, err := versions(ctx, r.db.drv, r.db.Dialect(), code)
	if err != nil {
		return nil, r.dbErr("load versions", err)
	}
	return v, nil
}

func (r *workOrderRepo) List(ctx context.Context) ([]WorkOrderSummary, error) {
	d := r.db.Dialect()
	w := entsql.Table("work_orders").As("w")
	s := entsql.Table("sites").As("s")
	sel := entsql.Dialect(d).
		Select(w.C("code"), w.C("version"), s.C("code"), w.C("diagnosis"), w.C("needs_review"), w.C("source_file"), w.C("created_at")).
		From(w).
		Join(s).On(w.C("site_id"), s.C("id")).
		OrderBy(w.C("code"), w.C("version"))

	var out []WorkOrderSummary
	err := scanAll(ctx, r.db.drv, sel, func(rows *entsql.Rows) error {
		var ws WorkOrderSummary
		var diag string
		if err := rows.Scan(&ws.Code, &ws.Version, &ws.SiteCode, &diag, &ws.NeedsReview, &ws.SourceFile, &ws.CreatedAt); err != nil {
			return err
		}
		ws.Diagnosis = constants.SiteCondition(diag)
		out = append(out, ws)
		return nil
	})
	if err != nil {
		return nil, r.dbErr("list work orders", err)
	}
	return out, nil
}

// Counts returns the row count of every table.
func (r *workOrderRepo) Counts(ctx context.Context) (map[string]int, error) {
	out := make(map[string]int, len(Tables))
	for _, t := range Tables {
		sel := entsql.Dialect(r.db.Dialect()).Select(entsql.Count("*")).From(entsql.Table(t))
		var n int
		if err := scanAll(ctx, r.db.drv, sel, func(rows *entsql.Rows) error { return rows.Scan(&n) }); err != nil {
			return nil, r.dbErr("count "+t, err)
		}
		out[t] = n
	}
	return out, nil
}

func nullableString[T ~string](p *T) any {
	if p == nil {
		return nil
	}
	return string(*p)
}
