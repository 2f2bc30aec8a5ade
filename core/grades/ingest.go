package grades

import (
	"bytes"
	"encoding/xml"
	"io"
	"math"
	"regexp"
	"strconv"

	"github.com/pkg/errors"

	"github.com/ferjoo/tutorias/core"
	"github.com/ferjoo/tutorias/core/course"
)

const (
	MinGrade     = 0
	MaxGrade     = 100
	PassingGrade = 60
)

var xmlDeclRegex = regexp.MustCompile(`^\s*<\?xml[^>]*\?>`)

// gradeDocument is an upload wrapped in a synthetic root:
//
//	<curso codigo="MAT101">Calculus</curso>
//	<notas>
//	  <actividad nombre="Tarea1" carnet="C001">90</actividad>
//	</notas>
type gradeDocument struct {
	XMLName xml.Name        `xml:"root"`
	Courses []courseElement `xml:"curso"`
	Grades  []gradesElement `xml:"notas"`
}

type courseElement struct {
	Code string `xml:"codigo,attr"`
	Name string `xml:",chardata"`
}

type gradesElement struct {
	Activities []activityElement `xml:"actividad"`
}

type activityElement struct {
	Name    string `xml:"nombre,attr"`
	Student string `xml:"carnet,attr"`
	Grade   string `xml:",chardata"`
}

type gradeEntry struct {
	activity, student int
	value             float64
}

// upload is a validated grade document; activities and students keep their first-seen order.
type upload struct {
	code, name string
	activities []string
	students   []string
	entries    []gradeEntry
}

func invalid(field, format string, args ...interface{}) error {
	err := errors.Errorf(format, args...)
	return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
}

func parseUpload(r io.Reader) (upload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return upload{}, errors.Wrap(err, "reading grades document")
	}
	data = xmlDeclRegex.ReplaceAll(data, nil)

	var buf bytes.Buffer
	buf.Grow(len(data) + len("<root></root>"))
	buf.WriteString("<root>")
	buf.Write(data)
	buf.WriteString("</root>")

	var doc gradeDocument
	if err := xml.Unmarshal(buf.Bytes(), &doc); err != nil {
		return upload{}, core.NewParseError("grades", err)
	}
	if len(doc.Courses) == 0 {
		return upload{}, core.NewParseError("grades", errors.New("missing <curso> element"))
	}
	if len(doc.Grades) == 0 {
		return upload{}, core.NewParseError("grades", errors.New("missing <notas> element"))
	}

	up := upload{
		code: course.CleanCode(doc.Courses[0].Code),
		name: core.CleanString(doc.Courses[0].Name),
	}
	if up.code == "" {
		return upload{}, invalid("codigo", "course code is required")
	}
	if up.name == "" {
		return upload{}, invalid("curso", "course name is required")
	}

	actIdx := make(map[string]int)
	stuIdx := make(map[string]int)
	for i, act := range doc.Grades[0].Activities {
		name := core.CleanString(act.Name)
		carnet := core.CleanString(act.Student)
		text := core.CleanString(act.Grade)
		switch {
		case name == "":
			return upload{}, invalid("nombre", "activity #%d: activity name is required", i+1)
		case carnet == "":
			return upload{}, invalid("carnet", "activity #%d (%s): student is required", i+1, name)
		case text == "":
			return upload{}, invalid("actividad", "activity #%d (%s, %s): grade is required", i+1, name, carnet)
		}
		grade, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(grade) || grade < MinGrade || grade > MaxGrade {
			return upload{}, invalid("actividad", "invalid grade %q for %s/%s: must be a number between %d and %d",
				text, name, carnet, MinGrade, MaxGrade)
		}

		r, ok := actIdx[name]
		if !ok {
			r = len(up.activities)
			actIdx[name] = r
			up.activities = append(up.activities, name)
		}
		c, ok := stuIdx[carnet]
		if !ok {
			c = len(up.students)
			stuIdx[carnet] = c
			up.students = append(up.students, carnet)
		}
		up.entries = append(up.entries, gradeEntry{activity: r, student: c, value: grade})
	}
	return up, nil
}
