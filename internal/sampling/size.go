package sampling

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// stdNormal is the quantile source for confidence levels. gonum's inverse
// CDF is accurate to full float64 precision, which keeps the size search
// stable near the TER boundary.
var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// ZScore returns the one-sided standard-normal quantile for the given
// confidence level, e.g. 0.99 -> 2.3263478740408408.
func ZScore(confidence float64) (float64, error) {
	if confidence <= 0 || confidence >= 1 {
		return 0, fmt.Errorf("%w: confidence must be in (0,1) exclusive, got %v", ErrInvalidParameters, confidence)
	}
	return stdNormal.Quantile(confidence), nil
}

func validateStatisticalParams(confidence, ter, eer float64) error {
	if confidence <= 0 || confidence >= 1 {
		return fmt.Errorf("%w: confidence must be in (0,1) exclusive, got %v", ErrInvalidParameters, confidence)
	}
	if ter <= 0 || ter >= 1 {
		return fmt.Errorf("%w: tolerable error rate must be in (0,1) exclusive, got %v", ErrInvalidParameters, ter)
	}
	if eer < 0 || eer >= 1 {
		return fmt.Errorf("%w: expected error rate must be in [0,1), got %v", ErrInvalidParameters, eer)
	}
	if ter <= eer {
		return fmt.Errorf("%w: tolerable error rate (%v) must exceed expected error rate (%v)", ErrInvalidParameters, ter, eer)
	}
	return nil
}

// UpperConfidenceLimit computes the one-sided upper confidence limit on the
// deviation rate for a sample of n with the configured expected error rate.
// The expected deviation count is ceil(n*EER) with a floor of one; the size
// search below is sensitive to exactly this rule.
func UpperConfidenceLimit(n int, z, eer float64) float64 {
	deviations := math.Ceil(float64(n) * eer)
	if deviations < 1 {
		deviations = 1
	}
	phat := deviations / float64(n)
	return phat + z*math.Sqrt(phat*(1-phat)/float64(n))
}

// StatisticalSampleSize returns the smallest sample size n in [1, N] whose
// one-sided upper confidence limit on the deviation rate stays within the
// tolerable error rate. If no n qualifies the whole population is returned:
// the audit becomes a census.
func StatisticalSampleSize(populationSize int, confidence, ter, eer float64) (int, error) {
	if populationSize < 1 {
		return 0, fmt.Errorf("%w: population size must be at least 1, got %d", ErrInvalidParameters, populationSize)
	}
	if err := validateStatisticalParams(confidence, ter, eer); err != nil {
		return 0, err
	}
	z, err := ZScore(confidence)
	if err != nil {
		return 0, err
	}
	// The limit is not monotone in n (the ceil'd deviation count jumps), so
	// scan for the smallest qualifying n rather than bisecting.
	for n := 1; n <= populationSize; n++ {
		if UpperConfidenceLimit(n, z, eer) <= ter {
			return n, nil
		}
	}
	return populationSize, nil
}

// ResolveSampleSize determines the planned total sample size for a run:
// statistically derived, fixed, or percentage-based depending on the method.
// The result is clamped to [0, N].
func ResolveSampleSize(populationSize int, cfg Config) (int, error) {
	if populationSize <= 0 {
		return 0, nil
	}

	statisticalN := populationSize
	if cfg.PopulationSize != nil {
		statisticalN = *cfg.PopulationSize
	}

	var size int
	var err error
	switch cfg.Method {
	case MethodStatistical:
		size, err = StatisticalSampleSize(statisticalN, cfg.Confidence, cfg.TolerableErrorRate, cfg.ExpectedErrorRate)
	case MethodPercentage:
		if cfg.SamplePercentage == nil {
			return 0, fmt.Errorf("%w: sample percentage is required for percentage sampling", ErrInvalidParameters)
		}
		size = percentageSize(populationSize, *cfg.SamplePercentage)
	case MethodSimpleRandom:
		switch {
		case cfg.SampleSize != nil:
			size = *cfg.SampleSize
		case cfg.SamplePercentage != nil:
			size = percentageSize(populationSize, *cfg.SamplePercentage)
		default:
			return 0, fmt.Errorf("%w: provide a sample size or percentage for simple_random sampling", ErrInvalidParameters)
		}
	case MethodSystematic:
		switch {
		case cfg.SampleSize != nil:
			size = *cfg.SampleSize
		case cfg.SamplePercentage != nil:
			size = percentageSize(populationSize, *cfg.SamplePercentage)
		default:
			size, err = StatisticalSampleSize(statisticalN, cfg.Confidence, cfg.TolerableErrorRate, cfg.ExpectedErrorRate)
		}
	default:
		return 0, fmt.Errorf("%w: unsupported method %q", ErrInvalidParameters, cfg.Method)
	}
	if err != nil {
		return 0, err
	}

	if size < 0 {
		size = 0
	}
	if size > populationSize {
		size = populationSize
	}
	return size, nil
}

func percentageSize(populationSize int, pct float64) int {
	return int(math.Ceil(float64(populationSize) * pct / 100))
}
