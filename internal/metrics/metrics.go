package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// lpsim_mint_results_total
	//
	// counter of position mint outcomes
	//
	// Has the following labels:
	// * status - minted, skipped, failed or already_minted
	MintResultsMetricName = "lpsim_mint_results_total"

	// lpsim_quote_errors_total
	//
	// counter of quoter calls that reverted or failed
	//
	// Has the following labels:
	// * phase - before or after minting
	// * kind - cost or impact
	QuoteErrorsMetricName = "lpsim_quote_errors_total"

	// lpsim_pool_tick
	//
	// gauge of the pool's current tick
	//
	// Has the following labels:
	// * phase - before or after minting
	PoolTickMetricName = "lpsim_pool_tick"

	// lpsim_pool_liquidity
	//
	// gauge of the pool's active liquidity
	//
	// Has the following labels:
	// * phase - before or after minting
	PoolLiquidityMetricName = "lpsim_pool_liquidity"

	// lpsim_price_impact_ratio
	//
	// gauge of the relative price impact of buying the base token
	//
	// Has the following labels:
	// * phase - before or after minting
	// * quote_amount - the quote token amount spent
	PriceImpactMetricName = "lpsim_price_impact_ratio"

	// lpsim_run_duration_seconds
	//
	// gauge of the wall time of a simulation run
	RunDurationMetricName = "lpsim_run_duration_seconds"
)

// Recorder collects run metrics in a private registry.
type Recorder struct {
	registry      *prometheus.Registry
	mintResults   *prometheus.CounterVec
	quoteErrors   *prometheus.CounterVec
	poolTick      *prometheus.GaugeVec
	poolLiquidity *prometheus.GaugeVec
	priceImpact   *prometheus.GaugeVec
	runDuration   prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		mintResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MintResultsMetricName,
			Help: "counter of position mint outcomes",
		}, []string{"status"}),
		quoteErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: QuoteErrorsMetricName,
			Help: "counter of quoter calls that reverted or failed",
		}, []string{"phase", "kind"}),
		poolTick: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: PoolTickMetricName,
			Help: "gauge of the pool's current tick",
		}, []string{"phase"}),
		poolLiquidity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: PoolLiquidityMetricName,
			Help: "gauge of the pool's active liquidity",
		}, []string{"phase"}),
		priceImpact: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: PriceImpactMetricName,
			Help: "gauge of the relative price impact of buying the base token",
		}, []string{"phase", "quote_amount"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: RunDurationMetricName,
			Help: "gauge of the wall time of a simulation run",
		}),
	}
	r.registry.MustRegister(r.mintResults, r.quoteErrors, r.poolTick, r.poolLiquidity, r.priceImpact, r.runDuration)
	return r
}

func (r *Recorder) ObserveMint(status string) {
	r.mintResults.WithLabelValues(status).Inc()
}

func (r *Recorder) ObserveQuoteError(phase, kind string) {
	r.quoteErrors.WithLabelValues(phase, kind).Inc()
}

// ObservePool records tick and liquidity. Liquidity is exported as a float and loses precision above 2^53.
func (r *Recorder) ObservePool(phase string, tick int32, liquidity float64) {
	r.poolTick.WithLabelValues(phase).Set(float64(tick))
	r.poolLiquidity.WithLabelValues(phase).Set(liquidity)
}

func (r *Recorder) ObserveImpact(phase, quoteAmount string, impact float64) {
	r.priceImpact.WithLabelValues(phase, quoteAmount).Set(impact)
}

func (r *Recorder) ObserveDuration(d time.Duration) {
	r.runDuration.Set(d.Seconds())
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("metrics path is empty")
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics dir: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
