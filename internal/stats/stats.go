// Package stats derives dashboard figures from a registry patient list.
package stats

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/mrsinham/ncdintake/internal/apiclient"
)

// Bucket is one line of a breakdown.
type Bucket struct {
	Label   string
	Count   int
	Percent float64
}

// Summary holds the figures shown for one registry.
type Summary struct {
	Registry    string
	Total       int
	ByGender    []Bucket
	ByCondition []Bucket
	ByDistrict  []Bucket
	AverageAge  float64
	AverageBMI  float64
	Overweight  int
}

// Percent returns n as a percentage of total, 0 when total is 0.
func Percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}

// Compute builds the summary of patients. The input is not modified.
func Compute(registry string, patients []apiclient.Patient) Summary {
	s := Summary{Registry: registry, Total: len(patients)}
	gender := map[string]int{}
	condition := map[string]int{}
	district := map[string]int{}
	ageSum := 0
	bmiSum, bmiCount := 0.0, 0

	for _, p := range patients {
		gender[labelOr(p.Gender, "unknown")]++
		condition[labelOr(p.Condition, "unspecified")]++
		district[labelOr(p.District, "unknown")]++
		ageSum += p.Age
		if p.BMI != nil {
			if bmi, err := strconv.ParseFloat(*p.BMI, 64); err == nil {
				bmiSum += bmi
				bmiCount++
				if bmi >= 25 {
					s.Overweight++
				}
			}
		}
	}
	if s.Total > 0 {
		s.AverageAge = float64(ageSum) / float64(s.Total)
	}
	if bmiCount > 0 {
		s.AverageBMI = bmiSum / float64(bmiCount)
	}
	s.ByGender = buckets(gender, s.Total)
	s.ByCondition = buckets(condition, s.Total)
	s.ByDistrict = buckets(district, s.Total)
	return s
}

func labelOr(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return strings.ToLower(v)
}

// buckets sorts by count descending, then label.
func buckets(counts map[string]int, total int) []Bucket {
	out := make([]Bucket, 0, len(counts))
	for label, n := range counts {
		out = append(out, Bucket{Label: label, Count: n, Percent: Percent(n, total)})
	}
	slices.SortFunc(out, func(a, b Bucket) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return out
}

// Render writes the summary as plain text.
func (s Summary) Render(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Registry: %s\n", s.Registry)
	fmt.Fprintf(&b, "Patients: %s\n", humanize.Comma(int64(s.Total)))
	if s.Total == 0 {
		_, err := io.WriteString(w, b.String())
		return err
	}
	fmt.Fprintf(&b, "Average age: %s years\n", humanize.FtoaWithDigits(s.AverageAge, 1))
	if s.AverageBMI > 0 {
		fmt.Fprintf(&b, "Average BMI: %s (%s overweight)\n",
			humanize.FtoaWithDigits(s.AverageBMI, 2), humanize.Comma(int64(s.Overweight)))
	}
	section := func(title string, list []Bucket) {
		fmt.Fprintf(&b, "\n%s\n", title)
		for _, bk := range list {
			fmt.Fprintf(&b, "  %-20s %8s  %5s%%\n", bk.Label, humanize.Comma(int64(bk.Count)), humanize.FtoaWithDigits(bk.Percent, 1))
		}
	}
	section("By gender", s.ByGender)
	section("By condition", s.ByCondition)
	section("By district", s.ByDistrict)
	_, err := io.WriteString(w, b.String())
	return err
}
