package service

import (
	"time"

	"github.com/fieldline/dispatch/internal/domain/model"
)

func ptr[T any](v T) *T { return &v }

func utc(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func queuedJob(id, orderID int64, duration, priority int) model.Job {
	return model.Job{
		ID:          id,
		OrderID:     orderID,
		AddressID:   id,
		Priority:    priority,
		Status:      model.JobStatusQueued,
		JobDuration: duration,
		Address:     &model.Address{ID: id, Lat: ptr(51.05 + float64(id)/1000), Lng: ptr(-114.07)},
	}
}

func fixedJob(id, orderID, techID int64, duration int, at time.Time) model.Job {
	return model.Job{
		ID:                 id,
		OrderID:            orderID,
		AddressID:          id,
		Priority:           5,
		Status:             model.JobStatusFixedTime,
		JobDuration:        duration,
		AssignedTechnician: &techID,
		FixedScheduleTime:  &at,
		Address:            &model.Address{ID: id, Lat: ptr(51.06 + float64(id)/1000), Lng: ptr(-114.08)},
	}
}

// weekdayTech returns a technician working Monday through Friday on the given
// business-timezone clock times.
func weekdayTech(id, vanID int64, start, end string) model.Technician {
	tech := model.Technician{
		ID:            id,
		UserID:        "user",
		Name:          "Tech",
		AssignedVanID: &vanID,
		Van:           &model.Van{ID: vanID},
		HomeLocation:  &model.Coordinates{Lat: 51.02 + float64(id)/100, Lng: -114.10},
	}
	for dow := 1; dow <= 5; dow++ {
		tech.DefaultHours = append(tech.DefaultHours, model.DefaultHours{
			TechnicianID: id,
			DayOfWeek:    dow,
			StartTime:    start,
			EndTime:      end,
		})
	}
	return tech
}
