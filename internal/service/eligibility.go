package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/fieldline/dispatch/internal/core"
	"github.com/fieldline/dispatch/internal/domain/model"
	"github.com/fieldline/dispatch/internal/domain/schedule"
)

// EligibilityService decides which technicians can perform each schedulable
// item, based on required equipment models versus van inventories.
type EligibilityService struct {
	equipment core.EquipmentRepository
	logger    *slog.Logger
}

// NewEligibilityService creates an EligibilityService.
func NewEligibilityService(equipment core.EquipmentRepository, logger *slog.Logger) *EligibilityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EligibilityService{equipment: equipment, logger: logger}
}

// EligibilityResult splits a pass's items into routable and unroutable sets.
type EligibilityResult struct {
	Eligible   []schedule.SchedulableItem
	Ineligible []schedule.IneligibleItem
}

// Resolve annotates every item with its eligible technician set. A bundle
// whose union of requirements no single technician can cover is broken apart
// and its jobs evaluated independently; jobs nobody can perform come back as
// ineligible with a persistent equipment failure.
func (s *EligibilityService) Resolve(
	ctx context.Context,
	items []schedule.SchedulableItem,
	technicians []model.Technician,
	vanEquipment map[int64][]model.VanEquipment,
) (EligibilityResult, error) {
	inventories := buildInventories(technicians, vanEquipment)

	var result EligibilityResult
	for _, item := range items {
		switch it := item.(type) {
		case schedule.SingleJob:
			resolved, err := s.resolveSingle(ctx, it.Job, technicians, inventories)
			if err != nil {
				return EligibilityResult{}, err
			}
			result.append(resolved)

		case schedule.Bundle:
			resolvedItems, err := s.resolveBundle(ctx, it, technicians, inventories)
			if err != nil {
				return EligibilityResult{}, err
			}
			for _, r := range resolvedItems {
				result.append(r)
			}

		default:
			return EligibilityResult{}, fmt.Errorf("unknown schedulable item type %T", item)
		}
	}
	return result, nil
}

type resolvedItem struct {
	eligible   schedule.SchedulableItem
	ineligible *schedule.IneligibleItem
}

func (r *EligibilityResult) append(item resolvedItem) {
	if item.ineligible != nil {
		r.Ineligible = append(r.Ineligible, *item.ineligible)
		return
	}
	r.Eligible = append(r.Eligible, item.eligible)
}

func (s *EligibilityService) resolveSingle(
	ctx context.Context,
	job model.Job,
	technicians []model.Technician,
	inventories map[int64]map[string]bool,
) (resolvedItem, error) {
	required, err := s.equipment.RequiredModelsForJob(ctx, job)
	if err != nil {
		return resolvedItem{}, fmt.Errorf("required models for job %d: %w", job.ID, err)
	}

	eligible := FindEligibleTechnicians(required, technicians, inventories)
	if len(eligible) == 0 {
		reason := schedule.ReasonNoEligibleTechEquipment
		if len(required) > 0 && noneHaveVans(technicians) {
			reason = schedule.ReasonNoAssignedVan
		}
		s.logger.InfoContext(ctx, "no technician can perform job",
			"job_id", job.ID, "required_models", required, "reason", reason)
		return resolvedItem{ineligible: &schedule.IneligibleItem{
			Item:   schedule.SingleJob{Job: job},
			Reason: reason,
		}}, nil
	}
	return resolvedItem{eligible: schedule.SingleJob{Job: job, Eligible: eligible}}, nil
}

func (s *EligibilityService) resolveBundle(
	ctx context.Context,
	bundle schedule.Bundle,
	technicians []model.Technician,
	inventories map[int64]map[string]bool,
) ([]resolvedItem, error) {
	union := make(map[string]bool)
	for _, job := range bundle.Items {
		required, err := s.equipment.RequiredModelsForJob(ctx, job)
		if err != nil {
			return nil, fmt.Errorf("required models for job %d: %w", job.ID, err)
		}
		for _, m := range required {
			union[m] = true
		}
	}

	requiredUnion := setToSorted(union)
	eligible := FindEligibleTechnicians(requiredUnion, technicians, inventories)
	if len(eligible) > 0 {
		bundle.Eligible = eligible
		return []resolvedItem{{eligible: bundle}}, nil
	}

	// Bundle break: nobody covers the union, so each job stands alone.
	s.logger.InfoContext(ctx, "breaking bundle, no technician covers combined equipment",
		"order_id", bundle.OrderID, "required_models", requiredUnion)

	items := make([]resolvedItem, 0, len(bundle.Items))
	for _, job := range bundle.Items {
		resolved, err := s.resolveSingle(ctx, job, technicians, inventories)
		if err != nil {
			return nil, err
		}
		items = append(items, resolved)
	}
	return items, nil
}

// FindEligibleTechnicians returns the ids of technicians whose van inventory
// covers every required model. A technician with no van has no equipment and
// qualifies only when nothing is required.
func FindEligibleTechnicians(
	required []string,
	technicians []model.Technician,
	inventories map[int64]map[string]bool,
) []int64 {
	var eligible []int64
	for _, tech := range technicians {
		inventory := inventories[tech.ID]
		if covers(inventory, required) {
			eligible = append(eligible, tech.ID)
		}
	}
	return eligible
}

func noneHaveVans(technicians []model.Technician) bool {
	for _, tech := range technicians {
		if tech.AssignedVanID != nil {
			return false
		}
	}
	return true
}

func covers(inventory map[string]bool, required []string) bool {
	for _, model := range required {
		if !inventory[model] {
			return false
		}
	}
	return true
}

// buildInventories maps technician id to the set of equipment models on their
// assigned van. Technicians without a van map to an empty set.
func buildInventories(
	technicians []model.Technician,
	vanEquipment map[int64][]model.VanEquipment,
) map[int64]map[string]bool {
	inventories := make(map[int64]map[string]bool, len(technicians))
	for _, tech := range technicians {
		set := make(map[string]bool)
		if tech.AssignedVanID != nil {
			for _, eq := range vanEquipment[*tech.AssignedVanID] {
				set[eq.Model] = true
			}
		}
		inventories[tech.ID] = set
	}
	return inventories
}

func setToSorted(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
