package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldline/dispatch/internal/core"
	"github.com/fieldline/dispatch/internal/data"
	"github.com/fieldline/dispatch/internal/domain/model"
	"github.com/fieldline/dispatch/internal/domain/optimize"
	"github.com/fieldline/dispatch/internal/domain/schedule"
	"github.com/fieldline/dispatch/internal/timeutil"
)

// perturbStep is the latitude nudge applied when a technician's start point
// coincides with an item location, so the two get distinct matrix indices.
const perturbStep = 0.00001

// emptyShiftClockUTC is the zero-width midday shift given to technicians with
// no windows on the target date; the optimizer cannot place anything inside it.
const emptyShiftClockUTC = 12

// PayloadBuilder assembles the optimizer request for one planning pass:
// location index, travel-time matrix, technician shifts and unavailability
// gaps, and the item list.
type PayloadBuilder struct {
	travel       *TravelTimeService
	availability *AvailabilityService
	cfg          core.ReplanConfig
	clock        data.TimeProvider
	logger       *slog.Logger
}

// PayloadBuilderOptions holds the dependencies for NewPayloadBuilder.
type PayloadBuilderOptions struct {
	Travel       *TravelTimeService
	Availability *AvailabilityService
	Config       core.ReplanConfig
	Clock        data.TimeProvider
	Logger       *slog.Logger
}

// NewPayloadBuilder creates a PayloadBuilder.
func NewPayloadBuilder(opts PayloadBuilderOptions) *PayloadBuilder {
	if opts.Clock == nil {
		opts.Clock = &data.RealTimeProvider{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &PayloadBuilder{
		travel:       opts.Travel,
		availability: opts.Availability,
		cfg:          opts.Config,
		clock:        opts.Clock,
		logger:       opts.Logger,
	}
}

// BuildPayloadParams are the inputs for one pass's payload.
type BuildPayloadParams struct {
	Technicians []model.Technician
	Items       []schedule.SchedulableItem
	LockedJobs  []model.Job
	TargetDate  time.Time
}

// BuiltPayload pairs the wire payload with the item index the results
// processor needs to map stop ids back to jobs, plus the shift envelopes it
// checks placements against. Technicians with no working time carry no entry.
type BuiltPayload struct {
	Payload            *optimize.Payload
	ItemsByID          map[string]schedule.SchedulableItem
	ShiftsByTechnician map[int64]schedule.TimeWindow
}

// Build assembles the payload for the target date. Fixed-time items whose
// committed time falls on a different date are filtered out; they are
// confirmed by the pass that owns their date.
func (b *PayloadBuilder) Build(ctx context.Context, params BuildPayloadParams) (*BuiltPayload, error) {
	now := b.clock.Now().UTC()
	isToday := timeutil.SameUTCDay(params.TargetDate, now)

	mode := optimize.ModePredictive
	departure := timeutil.StartOfUTCDay(params.TargetDate).
		Add(time.Duration(b.cfg.PredictiveDepartureHourUTC) * time.Hour)
	if isToday {
		mode = optimize.ModeRealTime
		departure = now
	}

	items := filterItemsForDate(params.Items, params.TargetDate)

	index := newLocationIndex(b.cfg.Depot)
	itemLocation := make(map[string]int, len(items))
	itemCoords := make(map[model.Coordinates]bool, len(items))
	itemsByID := make(map[string]schedule.SchedulableItem, len(items))
	for _, item := range items {
		coords, ok := itemCoordinates(item)
		if !ok {
			b.logger.WarnContext(ctx, "item address not geocoded, routing via depot",
				"item_id", item.ItemID())
			coords = b.cfg.Depot
		}
		itemLocation[item.ItemID()] = index.add(coords)
		itemCoords[coords.Round()] = true
		itemsByID[item.ItemID()] = item
	}

	techDTOs, unavailabilities, shifts := b.buildTechnicians(buildTechniciansParams{
		index:      index,
		items:      items,
		itemCoords: itemCoords,
		params:     params,
		isToday:    isToday,
		nowUTC:     now,
	})

	matrix, err := b.buildMatrix(ctx, index, mode, departure)
	if err != nil {
		return nil, err
	}

	payload := &optimize.Payload{
		Locations:                  index.locations,
		Technicians:                techDTOs,
		Items:                      b.buildItems(items, itemLocation, params.TargetDate),
		FixedConstraints:           []any{},
		TravelTimeMatrix:           matrix,
		TechnicianUnavailabilities: unavailabilities,
	}
	return &BuiltPayload{Payload: payload, ItemsByID: itemsByID, ShiftsByTechnician: shifts}, nil
}

// locationIndex assigns consecutive integer indices to unique rounded
// coordinates, with the depot pinned at index 0.
type locationIndex struct {
	locations []optimize.Location
	byCoords  map[model.Coordinates]int
}

func newLocationIndex(depot model.Coordinates) *locationIndex {
	idx := &locationIndex{byCoords: make(map[model.Coordinates]int)}
	idx.add(depot)
	return idx
}

func (x *locationIndex) add(coords model.Coordinates) int {
	rounded := coords.Round()
	if i, ok := x.byCoords[rounded]; ok {
		return i
	}
	i := len(x.locations)
	x.byCoords[rounded] = i
	x.locations = append(x.locations, optimize.Location{Index: i, Lat: rounded.Lat, Lng: rounded.Lng})
	return i
}

type buildTechniciansParams struct {
	index      *locationIndex
	items      []schedule.SchedulableItem
	itemCoords map[model.Coordinates]bool
	params     BuildPayloadParams
	isToday    bool
	nowUTC     time.Time
}

func (b *PayloadBuilder) buildTechnicians(
	p buildTechniciansParams,
) ([]optimize.Technician, []optimize.TechnicianUnavailability, map[int64]schedule.TimeWindow) {
	dateKey := timeutil.DateKey(p.params.TargetDate)
	fixedBlocks := fixedTimeBlocks(p.items)

	techDTOs := make([]optimize.Technician, 0, len(p.params.Technicians))
	shifts := make(map[int64]schedule.TimeWindow, len(p.params.Technicians))
	var unavailabilities []optimize.TechnicianUnavailability

	for _, tech := range p.params.Technicians {
		start := b.technicianStart(tech, p.isToday, p.itemCoords)
		startIdx := p.index.add(start)

		windows := b.availability.CalculateWindows(tech, p.params.TargetDate, p.params.TargetDate)[dateKey]
		if p.isToday {
			windows = b.availability.ApplyLockedJobs(windows, p.params.LockedJobs, tech.ID, p.params.TargetDate, p.nowUTC)
		}

		envelope, ok := schedule.Envelope(windows)
		if !ok {
			// No working time: a zero-width midday shift keeps the technician
			// in the payload but accepts no items.
			midday := timeutil.StartOfUTCDay(p.params.TargetDate).Add(emptyShiftClockUTC * time.Hour)
			techDTOs = append(techDTOs, optimize.Technician{
				ID:                 tech.ID,
				StartLocationIndex: startIdx,
				EarliestStartISO:   midday.Format(time.RFC3339),
				LatestEndISO:       midday.Format(time.RFC3339),
			})
			continue
		}

		shifts[tech.ID] = envelope
		techDTOs = append(techDTOs, optimize.Technician{
			ID:                 tech.ID,
			StartLocationIndex: startIdx,
			EarliestStartISO:   envelope.Start.Format(time.RFC3339),
			LatestEndISO:       envelope.End.Format(time.RFC3339),
		})

		for _, gap := range b.availability.FindAvailabilityGaps(tech.ID, envelope, windows) {
			if fixedBlocks.covers(tech.ID, gap) {
				// The fixed-time item itself carries this constraint.
				continue
			}
			unavailabilities = append(unavailabilities, optimize.TechnicianUnavailability{
				TechnicianID:    gap.TechnicianID,
				StartTimeISO:    gap.Start.Format(time.RFC3339),
				DurationSeconds: gap.DurationSeconds,
			})
		}
	}
	return techDTOs, unavailabilities, shifts
}

// technicianStart picks the routing start point: live position when planning
// today, else home, else the depot. A start that lands exactly on an item
// location is nudged north by one step so it gets its own matrix row.
func (b *PayloadBuilder) technicianStart(
	tech model.Technician,
	isToday bool,
	itemCoords map[model.Coordinates]bool,
) model.Coordinates {
	var coords model.Coordinates
	switch {
	case isToday && tech.CurrentLocation != nil:
		coords = *tech.CurrentLocation
	case tech.HomeLocation != nil:
		coords = *tech.HomeLocation
	default:
		coords = b.cfg.Depot
	}

	coords = coords.Round()
	for itemCoords[coords] {
		coords = model.Coordinates{Lat: coords.Lat + perturbStep, Lng: coords.Lng}.Round()
	}
	return coords
}

func (b *PayloadBuilder) buildItems(
	items []schedule.SchedulableItem,
	itemLocation map[string]int,
	targetDate time.Time,
) []optimize.Item {
	out := make([]optimize.Item, 0, len(items))
	for _, item := range items {
		dto := optimize.Item{
			ID:                    item.ItemID(),
			LocationIndex:         itemLocation[item.ItemID()],
			DurationSeconds:       int64(item.Duration().Seconds()),
			Priority:              item.Priority(),
			EligibleTechnicianIDs: item.EligibleTechnicians(),
		}

		if earliest, ok := earliestStart(item); ok {
			iso := earliest.UTC().Format(time.RFC3339)
			dto.EarliestStartTimeISO = &iso
		}

		if single, ok := item.(schedule.SingleJob); ok &&
			single.Job.Status == model.JobStatusFixedTime &&
			single.Job.FixedScheduleTime != nil &&
			timeutil.SameUTCDay(*single.Job.FixedScheduleTime, targetDate) {
			iso := single.Job.FixedScheduleTime.UTC().Format(time.RFC3339)
			dto.IsFixedTime = true
			dto.FixedTimeISO = &iso
		}

		out = append(out, dto)
	}
	return out
}

func (b *PayloadBuilder) buildMatrix(
	ctx context.Context,
	index *locationIndex,
	mode optimize.TravelMode,
	departure time.Time,
) ([][]int64, error) {
	n := len(index.locations)
	pairs := make([]optimize.PairKey, 0, n*n-n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			pairs = append(pairs, optimize.NewPairKey(
				model.Coordinates{Lat: index.locations[i].Lat, Lng: index.locations[i].Lng},
				model.Coordinates{Lat: index.locations[j].Lat, Lng: index.locations[j].Lng},
			))
		}
	}

	seconds, err := b.travel.BulkLookup(ctx, pairs, mode, departure)
	if err != nil {
		return nil, fmt.Errorf("build travel matrix: %w", err)
	}

	matrix := make([][]int64, n)
	for i := range matrix {
		matrix[i] = make([]int64, n)
		for j := range matrix[i] {
			if i == j {
				continue
			}
			key := optimize.NewPairKey(
				model.Coordinates{Lat: index.locations[i].Lat, Lng: index.locations[i].Lng},
				model.Coordinates{Lat: index.locations[j].Lat, Lng: index.locations[j].Lng},
			)
			if v, ok := seconds[key]; ok {
				matrix[i][j] = v
			} else {
				matrix[i][j] = b.cfg.TravelPenaltySeconds
			}
		}
	}
	return matrix, nil
}

// filterItemsForDate drops fixed-time items whose committed time is on a
// different date; each date's pass confirms its own fixed jobs.
func filterItemsForDate(items []schedule.SchedulableItem, targetDate time.Time) []schedule.SchedulableItem {
	out := make([]schedule.SchedulableItem, 0, len(items))
	for _, item := range items {
		if single, ok := item.(schedule.SingleJob); ok && single.Job.Status == model.JobStatusFixedTime {
			if single.Job.FixedScheduleTime == nil ||
				!timeutil.SameUTCDay(*single.Job.FixedScheduleTime, targetDate) {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}

func itemCoordinates(item schedule.SchedulableItem) (model.Coordinates, bool) {
	addr := item.Address()
	if addr == nil {
		return model.Coordinates{}, false
	}
	return addr.Coordinates()
}

// earliestStart returns the item's earliest-available constraint: the order's
// earliest time for a single job, the latest such time across a bundle.
func earliestStart(item schedule.SchedulableItem) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, job := range item.Jobs() {
		if job.Order == nil || job.Order.EarliestAvailableTime == nil {
			continue
		}
		t := *job.Order.EarliestAvailableTime
		if !found || t.After(latest) {
			latest = t
			found = true
		}
	}
	return latest, found
}

// fixedBlockSet indexes the fixed-time intervals of this pass's items per
// technician, so matching availability gaps can be elided.
type fixedBlockSet map[int64][]schedule.TimeWindow

func fixedTimeBlocks(items []schedule.SchedulableItem) fixedBlockSet {
	set := make(fixedBlockSet)
	for _, item := range items {
		single, ok := item.(schedule.SingleJob)
		if !ok || single.Job.Status != model.JobStatusFixedTime ||
			single.Job.FixedScheduleTime == nil || single.Job.AssignedTechnician == nil {
			continue
		}
		start := *single.Job.FixedScheduleTime
		set[*single.Job.AssignedTechnician] = append(set[*single.Job.AssignedTechnician],
			schedule.TimeWindow{Start: start, End: start.Add(single.Job.Duration())})
	}
	return set
}

func (s fixedBlockSet) covers(techID int64, gap schedule.Gap) bool {
	for _, w := range s[techID] {
		if w.Start.Equal(gap.Start) && w.End.Equal(gap.End) {
			return true
		}
	}
	return false
}
