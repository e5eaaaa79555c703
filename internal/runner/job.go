package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/samber/lo"

	v1 "github.com/mtgmine/mtgmine/apis/v1"
	"github.com/mtgmine/mtgmine/internal/engine"
)

var defaultValidator = validator.New(validator.WithRequiredStructEnabled())

// ParseMineJob parses a YAML or JSON job file and validates it. Besides the
// struct tags it checks that IDs are unique, that every collector and step
// has exactly one type and that collector references resolve.
func ParseMineJob(data []byte) (v1.MineJob, error) {
	var job v1.MineJob
	if err := yaml.Unmarshal(data, &job); err != nil {
		return v1.MineJob{}, fmt.Errorf("failed to unmarshal job data: %w", err)
	}

	if err := defaultValidator.Struct(job); err != nil {
		return v1.MineJob{}, fmt.Errorf("failed to validate job: %w", err)
	}

	if err := checkReferences(job.Spec); err != nil {
		return v1.MineJob{}, fmt.Errorf("failed to validate job: %w", err)
	}

	return job, nil
}

func checkReferences(spec v1.MineJobSpec) error {
	var errs []error

	collectorIDs := lo.Map(spec.Collectors, func(c v1.Collector, _ int) string { return c.ID })
	for _, id := range lo.FindDuplicates(collectorIDs) {
		errs = append(errs, fmt.Errorf("collector id %q is used more than once", id))
	}
	for _, c := range spec.Collectors {
		if _, err := ResolveCollectorSpec(c); err != nil {
			errs = append(errs, err)
		}
	}

	stepIDs := lo.Map(spec.Steps, func(s v1.Step, _ int) string { return s.ID })
	for _, id := range lo.FindDuplicates(stepIDs) {
		errs = append(errs, fmt.Errorf("step id %q is used more than once", id))
	}
	for _, s := range spec.Steps {
		if _, err := ResolveStepSpec(s); err != nil {
			errs = append(errs, err)
		}
		if s.Collector != nil && !lo.Contains(collectorIDs, *s.Collector) {
			errs = append(errs, fmt.Errorf("step %q references unknown collector %q", s.ID, *s.Collector))
		}
	}

	return errors.Join(errs...)
}

// ClientDefaults fill the collector settings a job leaves empty. They come
// from the environment, not from the job file.
type ClientDefaults struct {
	ScryfallURL       string
	SeventeenLandsURL string
	// Timeout in seconds; zero keeps the client default.
	Timeout int
	// Token is sent as a bearer token when a collector has no auth.
	Token string
}

func (d ClientDefaults) apply(spec any) {
	var client *v1.ClientSpec
	var baseURL string

	switch s := spec.(type) {
	case *v1.ScryfallCollector:
		client, baseURL = &s.ClientSpec, d.ScryfallURL
	case *v1.SeventeenLandsCollector:
		client, baseURL = &s.ClientSpec, d.SeventeenLandsURL
	default:
		return
	}

	if client.BaseURL == "" {
		client.BaseURL = baseURL
	}
	if client.Timeout == nil && d.Timeout > 0 {
		client.Timeout = lo.ToPtr(d.Timeout)
	}
	if client.Auth == nil && d.Token != "" {
		client.Auth = &v1.AuthSpec{Bearer: lo.ToPtr(d.Token)}
	}
}

// ClientDefaultsFromEnv reads MTGMINE_SCRYFALL_URL, MTGMINE_17LANDS_URL,
// MTGMINE_HTTP_TIMEOUT and MTGMINE_API_TOKEN.
func ClientDefaultsFromEnv() (ClientDefaults, error) {
	d := ClientDefaults{
		ScryfallURL:       os.Getenv("MTGMINE_SCRYFALL_URL"),
		SeventeenLandsURL: os.Getenv("MTGMINE_17LANDS_URL"),
		Token:             os.Getenv("MTGMINE_API_TOKEN"),
	}

	if raw := os.Getenv("MTGMINE_HTTP_TIMEOUT"); raw != "" {
		timeout, err := strconv.Atoi(raw)
		if err != nil || timeout <= 0 {
			return ClientDefaults{}, fmt.Errorf("MTGMINE_HTTP_TIMEOUT must be a positive number of seconds, got %q", raw)
		}
		d.Timeout = timeout
	}

	return d, nil
}

// BuildVariables creates the variables available to ${VAR} references: the
// built-in job variables plus every allowed environment variable. Each
// allowed variable must be set.
func BuildVariables(job v1.MineJob, date time.Time, allowedEnv []string) (map[string]string, error) {
	date = date.UTC()
	variables := map[string]string{
		"JOB_NAME":         job.Metadata.Name,
		"JOB_DATE":         date.Format(time.DateOnly),
		"JOB_DATE_ISO8601": date.Format(engine.ISO8601Basic),
		"JOB_DATE_RFC3339": date.Format(time.RFC3339),
	}

	var errs []error
	for _, envName := range allowedEnv {
		val, ok := os.LookupEnv(envName)
		if !ok {
			errs = append(errs, fmt.Errorf("environment variable %q is not set", envName))
			continue
		}
		variables[envName] = val
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return variables, nil
}
