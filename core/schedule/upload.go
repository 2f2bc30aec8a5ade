package schedule

import (
	"encoding/xml"
	"io"
	"regexp"

	"github.com/ferjoo/tutorias/core"
)

var slotRegex = regexp.MustCompile(`HorarioI:\s*(\d{1,2}:\d{2})\s*HorarioF:\s*(\d{1,2}:\d{2})`)

type scheduleDocument struct {
	XMLName xml.Name        `xml:"horarios"`
	Courses []courseElement `xml:"curso"`
}

type courseElement struct {
	Code string `xml:"codigo,attr"`
	Text string `xml:",chardata"`
}

// UploadSummary describes the outcome of a schedule upload.
type UploadSummary struct {
	ProcessedCourses int        `json:"total_courses_processed"`
	CreatedSchedules int        `json:"total_schedules_created"`
	InvalidCourses   int        `json:"invalid_courses"`
	Schedules        []Schedule `json:"schedules"`
}

// Upload reads a `<horarios>` document and creates one schedule per `HorarioI: HH:MM HorarioF: HH:MM`
// pair found in each `<curso codigo="...">`, all owned by tutorID.
// Courses without a code or without any pair are counted as invalid.
func (svc *Service) Upload(r io.Reader, tutorID int) (UploadSummary, error) {
	var doc scheduleDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return UploadSummary{}, core.NewParseError("schedules", err)
	}

	var summary UploadSummary
	slots := make([]NewSchedule, 0, len(doc.Courses))
	for _, c := range doc.Courses {
		code := core.CleanString(c.Code)
		matches := slotRegex.FindAllStringSubmatch(c.Text, -1)
		if code == "" || len(matches) == 0 {
			summary.InvalidCourses++
			continue
		}
		for _, m := range matches {
			slots = append(slots, NewSchedule{CourseCode: code, Start: m[1], End: m[2], TutorID: tutorID})
		}
		summary.ProcessedCourses++
	}

	created, err := svc.BulkCreate(slots)
	summary.Schedules = created
	summary.CreatedSchedules = len(created)
	return summary, err
}
