package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aetherinc/aether-waitlist/app/dto"
	"github.com/aetherinc/aether-waitlist/models"
	"github.com/aetherinc/aether-waitlist/repository"
	"github.com/aetherinc/aether-waitlist/utils"
)

const (
	DefaultSummaryDays = 30
	MaxSummaryDays     = 365
)

// AnalyticsFlow records page views and clicks into daily buckets and serves them to the dashboard
type AnalyticsFlow interface {
	RecordPageView(ctx context.Context, req *dto.PageViewRequest) error
	RecordEvent(ctx context.Context, req *dto.AnalyticsEventRequest) error
	Export(ctx context.Context, req *dto.AnalyticsExportQuery) (*ExportFile, error)
	Clear(ctx context.Context) (*dto.AnalyticsClearResult, error)
	Summary(ctx context.Context, days int) (*dto.AnalyticsSummary, error)
}

// AnalyticsFlowImpl implements AnalyticsFlow
type AnalyticsFlowImpl struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

func NewAnalyticsFlow(analyticsRepo repository.AnalyticsRepository) AnalyticsFlow {
	return &AnalyticsFlowImpl{analyticsRepo: analyticsRepo, now: utils.UTCNow}
}

func analyticsFieldsError(message string) *BusinessError {
	return NewValidationError("ANALYTICS_FIELDS_REQUIRED", message, ErrAnalyticsFieldsRequired)
}

// RecordPageView counts one view of a page in today's bucket
func (f *AnalyticsFlowImpl) RecordPageView(ctx context.Context, req *dto.PageViewRequest) error {
	if req == nil || strings.TrimSpace(req.Page) == "" {
		return analyticsFieldsError("Page is required")
	}
	return f.analyticsRepo.IncrementPageView(ctx, strings.TrimSpace(req.Page), f.now())
}

// RecordEvent counts one click on an element in today's bucket
func (f *AnalyticsFlowImpl) RecordEvent(ctx context.Context, req *dto.AnalyticsEventRequest) error {
	if req == nil {
		return analyticsFieldsError("eventType, elementId and page are required")
	}
	eventType := strings.TrimSpace(req.EventType)
	elementID := strings.TrimSpace(req.ElementID)
	page := strings.TrimSpace(req.Page)
	if eventType == "" || elementID == "" || page == "" {
		return analyticsFieldsError("eventType, elementId and page are required")
	}
	return f.analyticsRepo.IncrementEvent(ctx, eventType, elementID, page, utils.TrimmedPtr(req.ElementName), f.now())
}

// exportRange resolves the query bounds. Missing bounds mean epoch and now;
// a date-only end covers that whole day.
func (f *AnalyticsFlowImpl) exportRange(req *dto.AnalyticsExportQuery) (models.AnalyticsRange, error) {
	now := f.now()
	rng := models.AnalyticsRange{Start: time.Unix(0, 0).UTC(), End: now}

	if strings.TrimSpace(req.StartDate) != "" {
		t, _, err := utils.ParseDateParam(req.StartDate)
		if err != nil {
			return rng, NewValidationError("INVALID_START_DATE", "Invalid startDate: expected YYYY-MM-DD or RFC3339", ErrInvalidDateRange)
		}
		rng.Start = t
	}
	if strings.TrimSpace(req.EndDate) != "" {
		t, dateOnly, err := utils.ParseDateParam(req.EndDate)
		if err != nil {
			return rng, NewValidationError("INVALID_END_DATE", "Invalid endDate: expected YYYY-MM-DD or RFC3339", ErrInvalidDateRange)
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		rng.End = t
	}
	if rng.Start.After(rng.End) {
		return rng, NewValidationError("INVALID_DATE_RANGE", "startDate must not be after endDate", ErrInvalidDateRange)
	}
	return rng, nil
}

// Export renders the counters within the requested range as json (default) or xlsx
func (f *AnalyticsFlowImpl) Export(ctx context.Context, req *dto.AnalyticsExportQuery) (*ExportFile, error) {
	if req == nil {
		req = &dto.AnalyticsExportQuery{}
	}
	rng, err := f.exportRange(req)
	if err != nil {
		return nil, err
	}

	pageViews, err := f.analyticsRepo.PageViewsBetween(ctx, rng)
	if err != nil {
		return nil, err
	}
	events, err := f.analyticsRepo.EventsBetween(ctx, rng)
	if err != nil {
		return nil, err
	}

	now := f.now()
	stamp := now.Format(utils.DateOnlyLayout)

	switch strings.ToLower(req.Format) {
	case "", "json":
		doc := dto.AnalyticsExport{
			ExportDate: formatISO(now),
			DateRange:  dto.DateRangeDTO{Start: formatISO(rng.Start), End: formatISO(rng.End)},
			PageViews:  make([]dto.PageViewDTO, 0, len(pageViews)),
			Events:     make([]dto.AnalyticsEventDTO, 0, len(events)),
		}
		for _, pv := range pageViews {
			doc.PageViews = append(doc.PageViews, ToPageViewDTO(*pv))
		}
		for _, ev := range events {
			doc.Events = append(doc.Events, ToAnalyticsEventDTO(*ev))
		}
		body, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, NewServerError("EXPORT_ENCODE_FAILED", "Failed to encode export", err)
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("analytics-export-%s.json", stamp),
			ContentType: "application/json",
			Body:        body,
		}, nil
	case "xlsx":
		views := xlsxSheet{Name: "page_views", Header: []string{"id", "page", "date", "count"}}
		for _, pv := range pageViews {
			views.Rows = append(views.Rows, []string{
				strconv.FormatUint(uint64(pv.ID), 10),
				pv.Page,
				pv.Date.UTC().Format(utils.DateOnlyLayout),
				strconv.FormatInt(pv.Count, 10),
			})
		}
		clicks := xlsxSheet{Name: "events", Header: []string{"id", "event_type", "element_id", "element_name", "page", "date", "count"}}
		for _, ev := range events {
			clicks.Rows = append(clicks.Rows, []string{
				strconv.FormatUint(uint64(ev.ID), 10),
				ev.EventType,
				ev.ElementID,
				utils.DerefString(ev.ElementName),
				ev.Page,
				ev.Date.UTC().Format(utils.DateOnlyLayout),
				strconv.FormatInt(ev.Count, 10),
			})
		}
		body, err := buildWorkbook(views, clicks)
		if err != nil {
			return nil, NewServerError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("analytics-export-%s.xlsx", stamp),
			ContentType: xlsxContentType,
			Body:        body,
		}, nil
	default:
		return nil, NewValidationError("INVALID_EXPORT_FORMAT", "format must be json or xlsx", nil)
	}
}

// Clear deletes every counter of both kinds
func (f *AnalyticsFlowImpl) Clear(ctx context.Context) (*dto.AnalyticsClearResult, error) {
	pv, ev, err := f.analyticsRepo.Clear(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.AnalyticsClearResult{PageViewsDeleted: pv, EventsDeleted: ev}, nil
}

// Summary totals the last days (today included) per page and per element, busiest first
func (f *AnalyticsFlowImpl) Summary(ctx context.Context, days int) (*dto.AnalyticsSummary, error) {
	days = utils.ClampLimit(days, DefaultSummaryDays, MaxSummaryDays)
	now := f.now()
	rng := models.AnalyticsRange{
		Start: utils.StartOfDayUTC(now).AddDate(0, 0, -(days - 1)),
		End:   now,
	}

	pageViews, err := f.analyticsRepo.PageViewsBetween(ctx, rng)
	if err != nil {
		return nil, err
	}
	events, err := f.analyticsRepo.EventsBetween(ctx, rng)
	if err != nil {
		return nil, err
	}

	out := &dto.AnalyticsSummary{Days: days, Pages: []dto.PageTotalDTO{}, Events: []dto.EventTotalDTO{}}

	pageIdx := map[string]int{}
	for _, pv := range pageViews {
		out.TotalViews += pv.Count
		i, ok := pageIdx[pv.Page]
		if !ok {
			i = len(out.Pages)
			pageIdx[pv.Page] = i
			out.Pages = append(out.Pages, dto.PageTotalDTO{Page: pv.Page})
		}
		out.Pages[i].Views += pv.Count
	}

	eventIdx := map[string]int{}
	for _, ev := range events {
		out.TotalClicks += ev.Count
		key := ev.EventType + "\x00" + ev.ElementID
		i, ok := eventIdx[key]
		if !ok {
			i = len(out.Events)
			eventIdx[key] = i
			out.Events = append(out.Events, dto.EventTotalDTO{EventType: ev.EventType, ElementID: ev.ElementID})
		}
		out.Events[i].Clicks += ev.Count
		if ev.ElementName != nil {
			out.Events[i].ElementName = ev.ElementName
		}
	}

	sort.SliceStable(out.Pages, func(a, b int) bool { return out.Pages[a].Views > out.Pages[b].Views })
	sort.SliceStable(out.Events, func(a, b int) bool { return out.Events[a].Clicks > out.Events[b].Clicks })
	return out, nil
}
