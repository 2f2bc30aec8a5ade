// Package bootstrap loads a `<configuraciones>` document that seeds courses, tutors, students
// and their course assignments.
package bootstrap

import (
	"bytes"
	"encoding/xml"
	"io"

	"github.com/pkg/errors"

	"github.com/ferjoo/tutorias/core"
	"github.com/ferjoo/tutorias/core/assignment"
	"github.com/ferjoo/tutorias/core/course"
	"github.com/ferjoo/tutorias/core/student"
	"github.com/ferjoo/tutorias/core/user"
)

type (
	configDocument struct {
		XMLName  xml.Name        `xml:"configuraciones"`
		Courses  []textElement   `xml:"cursos>curso"`
		Tutors   []personElement `xml:"tutores>tutor"`
		Students []personElement `xml:"estudiantes>estudiante"`
		Tutoring []textElement   `xml:"asignaciones>c_tutores>tutor_curso"`
		Enrolled []textElement   `xml:"asignaciones>c_estudiante>estudiante_curso"`
	}

	// textElement is `<x codigo="...">text</x>`.
	textElement struct {
		Code string `xml:"codigo,attr"`
		Text string `xml:",chardata"`
	}

	personElement struct {
		ID       string `xml:"registro_personal,attr"`
		Carnet   string `xml:"carnet,attr"`
		Password string `xml:"contrasenia,attr"`
		Name     string `xml:",chardata"`
	}
)

type (
	// Tally counts assignment records: Total = Correct + Incorrect.
	Tally struct {
		Total     int `xml:"total" json:"total"`
		Correct   int `xml:"correcto" json:"correcto"`
		Incorrect int `xml:"incorrecto" json:"incorrecto"`
	}

	// Result is the outcome of a configuration load.
	Result struct {
		XMLName        xml.Name `xml:"configuraciones_aplicadas" json:"-"`
		CoursesLoaded  int      `xml:"-" json:"cursos_cargados"`
		TutorsLoaded   int      `xml:"tutores_cargados" json:"tutores_cargados"`
		StudentsLoaded int      `xml:"estudiantes_cargados" json:"estudiantes_cargados"`
		Tutors         Tally    `xml:"asignaciones>tutores" json:"asignaciones_tutores"`
		Students       Tally    `xml:"asignaciones>estudiantes" json:"asignaciones_estudiantes"`
	}
)

// WriteXML writes the `<configuraciones_aplicadas>` report.
func (res Result) WriteXML(w io.Writer) error {
	if _, err := io.WriteString(w, `<?xml version="1.0"?>`+"\n"); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")
	if err := enc.Encode(res); err != nil {
		return errors.Wrap(err, "encoding configuration result")
	}
	return enc.Flush()
}

func (res Result) XML() (string, error) {
	var buf bytes.Buffer
	if err := res.WriteXML(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type Loader struct {
	courses     *course.Service
	users       *user.Service
	students    *student.Service
	assignments *assignment.Service
	log         core.Logger
}

func NewLoader(
	courses *course.Service,
	users *user.Service,
	students *student.Service,
	assignments *assignment.Service,
	logger core.Logger,
) *Loader {
	return &Loader{courses: courses, users: users, students: students, assignments: assignments, log: logger}
}

// Load applies a configuration document: courses first, then tutors (as users) and students,
// then assignments. A record that cannot be created is logged and skipped.
// Only a malformed document aborts the load.
func (l *Loader) Load(r io.Reader) (Result, error) {
	var doc configDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return Result{}, core.NewParseError("configuration", err)
	}

	var res Result
	for _, c := range doc.Courses {
		code, name := core.CleanString(c.Code), core.CleanString(c.Text)
		if code == "" || name == "" {
			continue
		}
		if _, err := l.courses.Create(course.NewCourse{Code: code, Name: name}); err != nil {
			l.log.Warn("bootstrap: skipping course "+code, err)
			continue
		}
		res.CoursesLoaded++
	}

	for _, t := range doc.Tutors {
		id, name := core.CleanString(t.ID), core.CleanString(t.Name)
		if id == "" || t.Password == "" || name == "" {
			continue
		}
		_, err := l.users.Create(user.NewUser{
			Username:  id,
			Email:     id + "@tutor.com",
			Password:  t.Password,
			FirstName: name,
			Imported:  true,
		})
		if err != nil {
			l.log.Warn("bootstrap: skipping tutor "+id, err)
			continue
		}
		res.TutorsLoaded++
	}

	for _, s := range doc.Students {
		carnet, name := core.CleanString(s.Carnet), core.CleanString(s.Name)
		if carnet == "" || s.Password == "" || name == "" {
			continue
		}
		if _, err := l.students.Create(student.NewStudent{Carnet: carnet, Password: s.Password, Name: name}); err != nil {
			l.log.Warn("bootstrap: skipping student "+carnet, err)
			continue
		}
		res.StudentsLoaded++
	}

	for _, a := range doc.Tutoring {
		code, id := core.CleanString(a.Code), core.CleanString(a.Text)
		if code == "" || id == "" {
			continue
		}
		res.Tutors.Total++
		if err := l.assignTutor(id, code); err != nil {
			l.log.Warn("bootstrap: tutor "+id+" not assigned to "+code, err)
			res.Tutors.Incorrect++
			continue
		}
		res.Tutors.Correct++
	}

	for _, a := range doc.Enrolled {
		code, carnet := core.CleanString(a.Code), core.CleanString(a.Text)
		if code == "" || carnet == "" {
			continue
		}
		res.Students.Total++
		if err := l.enrollStudent(carnet, code); err != nil {
			l.log.Warn("bootstrap: student "+carnet+" not enrolled in "+code, err)
			res.Students.Incorrect++
			continue
		}
		res.Students.Correct++
	}

	l.log.Info("bootstrap: configuration applied", res)
	return res, nil
}

func (l *Loader) assignTutor(username, code string) error {
	tutor, err := l.users.GetByUsername(username)
	if err != nil {
		return err
	}
	_, err = l.assignments.AssignTutor(assignment.NewTutorCourse{TutorID: tutor.ID, CourseCode: code})
	return err
}

func (l *Loader) enrollStudent(carnet, code string) error {
	stu, err := l.students.GetByCarnet(carnet)
	if err != nil {
		return err
	}
	_, err = l.assignments.EnrollStudent(assignment.NewStudentCourse{StudentID: stu.ID, CourseCode: code})
	return err
}
