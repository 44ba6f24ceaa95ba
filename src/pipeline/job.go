// Package pipeline runs one charting job: load a record file, derive the configured
// series and render every chart next to the input.
package pipeline

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/iafilius/OrderLogCharts/src/records"
	"github.com/iafilius/OrderLogCharts/src/render"
	"github.com/iafilius/OrderLogCharts/src/series"
)

// Job is a complete run description.
type Job struct {
	Name     string             `yaml:"name"`
	Input    string             `yaml:"input"`
	Format   records.Format     `yaml:"format"`
	Mode     records.Mode       `yaml:"mode"`
	Mappings []series.Mapping   `yaml:"mappings"`
	Charts   []render.ChartSpec `yaml:"charts"`
	// OutputDir places charts in this directory instead of next to the input.
	OutputDir string `yaml:"output_dir"`
}

// Validate checks the parts of a job that do not depend on the data.
func (j Job) Validate() error {
	if j.Input == "" {
		return errors.New("job has no input file")
	}
	if len(j.Charts) == 0 {
		return errors.Newf("job %q has no charts", j.Name)
	}
	for _, m := range j.Mappings {
		if err := m.Validate(); err != nil {
			return errors.Wrapf(err, "job %q", j.Name)
		}
	}
	for i, c := range j.Charts {
		if _, err := render.ParseKind(string(c.Kind)); err != nil {
			return errors.Wrapf(err, "job %q chart %d", j.Name, i+1)
		}
		if len(c.Series) == 0 && c.Kind != render.KindMultiPanel {
			return errors.Newf("job %q chart %d (%s) names no series", j.Name, i+1, c.Kind)
		}
	}
	return nil
}

// LoadProfile reads a YAML job description. Unknown keys are rejected.
func LoadProfile(fs afero.Fs, path string) (Job, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Job{}, errors.Wrapf(err, "read profile %s", path)
	}
	var job Job
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&job); err != nil {
		return Job{}, errors.Wrapf(err, "parse profile %s", path)
	}
	if job.Name == "" {
		job.Name = path
	}
	return job, nil
}
