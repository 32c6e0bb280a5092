package services

import (
	"slices"

	"sales-dashboard/internal/models"
)

// ApplyFilter returns the records of ds that satisfy every criterion of f.
// Unset criteria impose no restriction. The input is never modified.
func ApplyFilter(ds *models.Dataset, f models.Filter) *models.Dataset {
	if f.IsEmpty() {
		return models.NewDataset(ds.Records())
	}

	regions := toSet(f.Regions)
	customerTypes := toSet(f.CustomerTypes)

	out := make([]models.Record, 0, ds.Len())
	for r := range ds.All() {
		if !f.From.IsZero() && r.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && r.Date.After(f.To) {
			continue
		}
		if regions != nil && !regions[r.Region] {
			continue
		}
		if customerTypes != nil && !customerTypes[r.CustomerType] {
			continue
		}
		out = append(out, r)
	}
	return models.NewDataset(out)
}

// FilterOptionsOf projects the values a caller can offer as filter choices.
func FilterOptionsOf(ds *models.Dataset) models.FilterOptions {
	opts := models.FilterOptions{Regions: []string{}, CustomerTypes: []string{}}
	regions := make(map[string]struct{})
	customerTypes := make(map[string]struct{})

	for r := range ds.All() {
		if r.Region != "" {
			regions[r.Region] = struct{}{}
		}
		if r.CustomerType != "" {
			customerTypes[r.CustomerType] = struct{}{}
		}
		if opts.DateMin.IsZero() || r.Date.Before(opts.DateMin) {
			opts.DateMin = r.Date
		}
		if opts.DateMax.IsZero() || r.Date.After(opts.DateMax) {
			opts.DateMax = r.Date
		}
	}

	for k := range regions {
		opts.Regions = append(opts.Regions, k)
	}
	for k := range customerTypes {
		opts.CustomerTypes = append(opts.CustomerTypes, k)
	}
	slices.Sort(opts.Regions)
	slices.Sort(opts.CustomerTypes)
	return opts
}

func toSet(items []string) map[string]bool {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
