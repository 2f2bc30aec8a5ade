package schedule

import (
	"time"

	"github.com/pkg/errors"

	"github.com/ferjoo/tutorias/core"
	"github.com/ferjoo/tutorias/core/course"
)

type (
	Repository interface {
		CreateSchedule(s Schedule) (Schedule, error)
		QueryAllSchedules() ([]Schedule, error)
		GetScheduleByID(id int) (Schedule, error)
		GetSchedulesByCourse(code string) ([]Schedule, error)
		GetSchedulesByTutor(tutorID int) ([]Schedule, error)
		UpdateSchedule(s Schedule) (Schedule, error)
		DeleteSchedule(id int) (bool, error)
		Stats() core.StoreStats
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ns NewSchedule) (Schedule, error) {
	return svc.create(ns, time.Now().UTC())
}

func (svc *Service) create(ns NewSchedule, uploadedAt time.Time) (Schedule, error) {
	if err := ns.Validate(); err != nil {
		return Schedule{}, err
	}
	return svc.repo.CreateSchedule(Schedule{
		CourseCode: ns.CourseCode,
		Start:      ns.Start,
		End:        ns.End,
		TutorID:    ns.TutorID,
		UploadDate: uploadedAt,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	})
}

// BulkCreate creates schedules one by one sharing one upload date;
// it stops at the first failure without undoing what was created.
func (svc *Service) BulkCreate(nss []NewSchedule) ([]Schedule, error) {
	uploadedAt := time.Now().UTC()
	created := make([]Schedule, 0, len(nss))
	for i, ns := range nss {
		s, err := svc.create(ns, uploadedAt)
		if err != nil {
			return created, errors.Wrapf(err, "schedule #%d", i+1)
		}
		created = append(created, s)
	}
	return created, nil
}

func (svc *Service) QueryAll() ([]Schedule, error) {
	return svc.repo.QueryAllSchedules()
}

func (svc *Service) GetByID(id int) (Schedule, error) {
	return svc.repo.GetScheduleByID(id)
}

func (svc *Service) GetByCourse(code string) ([]Schedule, error) {
	return svc.repo.GetSchedulesByCourse(course.CleanCode(code))
}

func (svc *Service) GetByTutor(tutorID int) ([]Schedule, error) {
	return svc.repo.GetSchedulesByTutor(tutorID)
}

func (svc *Service) Update(id int, us UpdateSchedule) (Schedule, error) {
	s, err := svc.repo.GetScheduleByID(id)
	if err != nil {
		return Schedule{}, err
	}
	if err := us.Validate(s); err != nil {
		return Schedule{}, err
	}
	us.apply(&s)
	return svc.repo.UpdateSchedule(s)
}

func (svc *Service) Delete(id int) (bool, error) {
	return svc.repo.DeleteSchedule(id)
}

func (svc *Service) Stats() core.StoreStats {
	return svc.repo.Stats()
}
