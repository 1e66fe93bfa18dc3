// Package directory loads the read-only doctor directory and groups doctors
// under recommended specialties.
package directory

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/medemi-triage-server/internal/domain"
)

// Directory is an in-memory doctor directory.
type Directory struct {
	doctors []domain.Doctor
	byName  map[string]domain.Doctor
}

// New builds a directory from a doctor list.
func New(doctors []domain.Doctor) *Directory {
	d := &Directory{
		doctors: make([]domain.Doctor, 0, len(doctors)),
		byName:  make(map[string]domain.Doctor, len(doctors)),
	}
	for _, doc := range doctors {
		if strings.TrimSpace(doc.Name) == "" {
			continue
		}
		d.doctors = append(d.doctors, doc)
		d.byName[strings.ToLower(doc.Name)] = doc
	}
	return d
}

// Load reads a {"doctors": [...]} document (JSON or YAML, by extension).
// Any failure yields an empty directory; the error is logged, not returned.
func Load(path string, logger *logrus.Logger) *Directory {
	doctors, err := readDoctors(path)
	if err != nil {
		logger.WithError(err).WithField("path", path).Warn("Doctor directory unavailable, continuing with empty directory")
		return New(nil)
	}

	logger.WithFields(logrus.Fields{
		"path":    path,
		"doctors": len(doctors),
	}).Info("Loaded doctor directory")
	return New(doctors)
}

func readDoctors(path string) ([]domain.Doctor, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var doctors []domain.Doctor
	if err := v.UnmarshalKey("doctors", &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

// Doctors returns every doctor in file order.
func (d *Directory) Doctors() []domain.Doctor {
	return d.doctors
}

// FindByName looks a doctor up by case-insensitive name.
func (d *Directory) FindByName(name string) (domain.Doctor, bool) {
	doc, ok := d.byName[strings.ToLower(strings.TrimSpace(name))]
	return doc, ok
}

// BySpecialty returns the doctors whose specialization equals specialty.
func BySpecialty(doctors []domain.Doctor, specialty string) []domain.Doctor {
	var matched []domain.Doctor
	for _, doc := range doctors {
		if doc.Specialization == specialty {
			matched = append(matched, doc)
		}
	}
	return matched
}

// Match groups doctors under each recommended specialty, in recommendation
// order, skipping specialties with no doctors. When none of the recommended
// specialties has a doctor, a single General Medicine group is returned
// instead. An empty directory yields no groups and the reception message.
func Match(doctors []domain.Doctor, specialties []string) ([]domain.DoctorGroup, string) {
	if len(doctors) == 0 {
		return nil, domain.DirectoryUnavailableMessage
	}

	var groups []domain.DoctorGroup
	for _, specialty := range specialties {
		if matched := BySpecialty(doctors, specialty); len(matched) > 0 {
			groups = append(groups, domain.DoctorGroup{Specialty: specialty, Doctors: matched})
		}
	}

	if len(groups) == 0 {
		groups = append(groups, domain.DoctorGroup{
			Specialty: domain.GeneralMedicine,
			Doctors:   BySpecialty(doctors, domain.GeneralMedicine),
		})
	}
	return groups, ""
}
