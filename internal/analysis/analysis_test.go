package analysis

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/sdesim/internal/models"
	"github.com/san-kum/sdesim/internal/sde"
)

func TestPowerSpectrumLength(t *testing.T) {
	ps := PowerSpectrum(make([]float64, 100))
	if len(ps) != 64 {
		t.Errorf("expected 64 bins for 128-point padding, got %d", len(ps))
	}
	if PowerSpectrum(nil) != nil {
		t.Error("expected nil for empty input")
	}
}

func TestDominantFrequency(t *testing.T) {
	dt := 0.01
	data := make([]float64, 1024)
	for i := range data {
		data[i] = 3 + math.Sin(2*math.Pi*5*float64(i)*dt)
	}

	f := DominantFrequency(data, dt)
	if math.Abs(f-5) > 0.2 {
		t.Errorf("expected ~5 Hz, got %.3f", f)
	}

	if DominantFrequency([]float64{1, 1, 1, 1}, dt) != 0 {
		t.Error("expected zero for a flat series")
	}
}

func TestAutocorrelation(t *testing.T) {
	acf := Autocorrelation([]float64{1, 2, 3, 4, 5}, 10)
	if len(acf) != 5 {
		t.Fatalf("expected lags clipped to 5, got %d", len(acf))
	}
	if math.Abs(acf[0]-1) > 1e-12 {
		t.Errorf("lag 0 should be 1, got %v", acf[0])
	}
	if acf[1] >= acf[0] {
		t.Error("expected decay with lag")
	}

	flat := Autocorrelation([]float64{2, 2, 2}, 2)
	for _, v := range flat {
		if v != 0 {
			t.Errorf("expected zeros for constant series, got %v", flat)
		}
	}
}

func TestOUAutocorrelationDecay(t *testing.T) {
	ou := &models.OrnsteinUhlenbeck{Theta: 2, Mu: 0, Sigma: 1}
	res, err := sde.NewFromSystem(ou).Run(context.Background(), sde.Broadcast([]float64{0}, 1), sde.Config{
		Duration: 200, Steps: 20000, Realizations: 1, Seed: 4,
	})
	if err != nil {
		t.Fatal(err)
	}

	acf := Autocorrelation(res.Path(0, 0), 10)
	// exp(-θ·10·dt) = exp(-0.2)
	if math.Abs(acf[10]-math.Exp(-0.2)) > 0.1 {
		t.Errorf("lag-10 autocorrelation %.3f, expected ~%.3f", acf[10], math.Exp(-0.2))
	}
}
