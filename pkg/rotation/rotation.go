// Package rotation implements the lambda deployment bucket rotation scheme.
// Buckets are named {project}-lambda-{environment}-{thousands:03d}-{number:03d}
// and ordered by the combined ordinal thousands*1000+number.
package rotation

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

const (
	// MaxOrdinal is the largest ordinal the two 3-digit fields can encode.
	MaxOrdinal = 999*1000 + 999

	// DefaultRetention is how many rotation buckets cleanup keeps.
	DefaultRetention = 10
)

var bucketPattern = regexp.MustCompile(`^(.+)-lambda-(.+)-(\d{3})-(\d{3})$`)

// BucketName is a parsed rotation bucket name.
type BucketName struct {
	Project     string
	Environment string
	Thousands   int
	Number      int
}

func (b BucketName) Ordinal() int {
	return b.Thousands*1000 + b.Number
}

func (b BucketName) String() string {
	return fmt.Sprintf("%s-lambda-%s-%03d-%03d", b.Project, b.Environment, b.Thousands, b.Number)
}

// Next returns the name with the ordinal incremented by one, carrying into
// the thousands field.
func (b BucketName) Next() (BucketName, error) {
	return FromOrdinal(b.Project, b.Environment, b.Ordinal()+1)
}

func FromOrdinal(project, environment string, ordinal int) (BucketName, error) {
	if ordinal < 0 || ordinal > MaxOrdinal {
		return BucketName{}, fmt.Errorf("ordinal %d out of range [0, %d]", ordinal, MaxOrdinal)
	}
	return BucketName{
		Project:     project,
		Environment: environment,
		Thousands:   ordinal / 1000,
		Number:      ordinal % 1000,
	}, nil
}

// Parse reads a bucket name of the rotation shape. Names that do not match
// the pattern, or that belong to a different project or environment, return
// false.
func Parse(name, project, environment string) (BucketName, bool) {
	m := bucketPattern.FindStringSubmatch(name)
	if m == nil {
		return BucketName{}, false
	}
	if m[1] != project || m[2] != environment {
		return BucketName{}, false
	}
	thousands, err := strconv.Atoi(m[3])
	if err != nil {
		return BucketName{}, false
	}
	number, err := strconv.Atoi(m[4])
	if err != nil {
		return BucketName{}, false
	}
	return BucketName{Project: project, Environment: environment, Thousands: thousands, Number: number}, true
}

// Filter keeps the names that belong to the project/environment rotation
// sequence, sorted oldest first.
func Filter(names []string, project, environment string) []BucketName {
	var matched []BucketName
	for _, name := range names {
		if b, ok := Parse(name, project, environment); ok {
			matched = append(matched, b)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Ordinal() < matched[j].Ordinal()
	})
	return matched
}

// Latest returns the highest-ordinal bucket among names, or false when no
// name matches.
func Latest(names []string, project, environment string) (BucketName, bool) {
	matched := Filter(names, project, environment)
	if len(matched) == 0 {
		return BucketName{}, false
	}
	return matched[len(matched)-1], true
}

// ProposeNext returns the bucket that should be created next: the successor
// of the latest bucket, or ordinal 0 when the sequence is empty.
func ProposeNext(names []string, project, environment string) (BucketName, error) {
	latest, ok := Latest(names, project, environment)
	if !ok {
		return FromOrdinal(project, environment, 0)
	}
	return latest.Next()
}

// Expired returns the buckets beyond the retention window, oldest first.
// The newest `retention` buckets are kept.
func Expired(names []string, project, environment string, retention int) []BucketName {
	matched := Filter(names, project, environment)
	if len(matched) <= retention {
		return nil
	}
	return matched[:len(matched)-retention]
}
