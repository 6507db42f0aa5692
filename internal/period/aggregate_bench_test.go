package period

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/carbon-dashboard/internal/carbon"
)

// benchHistory returns n monthly records ending December 2024, in reverse
// order so Sort has work to do, plus one Scope 3 record per month.
func benchHistory(n int) ([]carbon.ActivityRecord, []carbon.Scope3Record) {
	end := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)
	recs := make([]carbon.ActivityRecord, 0, n)
	scope3 := make([]carbon.Scope3Record, 0, n)
	for i := 0; i < n; i++ {
		label := FormatMonth(end.AddDate(0, -i, 0))
		recs = append(recs, carbon.NormalizeRow(carbon.ActivityRow{
			Month:           label,
			ElectricityKw:   carbon.Quantity(1000 + i),
			DieselLitres:    carbon.Quantity(50 + i%7),
			GasKwh:          300,
			RefrigerantKg:   0.1,
			RefrigerantCode: carbon.RefrigerantR410A,
		}))
		scope3 = append(scope3, carbon.NewScope3Record(label, carbon.Scope3BusinessTravel, "flights", 500, "km", 0.15))
	}
	return recs, scope3
}

func BenchmarkAggregate_LastTwelve(b *testing.B) {
	recs, scope3 := benchHistory(60)
	sel := Last(DefaultMonths)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Aggregate(recs, scope3, sel)
	}
}

func BenchmarkAggregate_All(b *testing.B) {
	recs, scope3 := benchHistory(60)
	sel := Everything()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Aggregate(recs, scope3, sel)
	}
}

func BenchmarkSort(b *testing.B) {
	recs, _ := benchHistory(120)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Sort(recs)
	}
}

// TestAggregate_ConcurrentCallsAgree checks that Aggregate shares no mutable
// state between callers.
func TestAggregate_ConcurrentCallsAgree(t *testing.T) {
	const goroutines = 150
	recs, scope3 := benchHistory(24)
	want := Aggregate(recs, scope3, Last(6))

	var wg sync.WaitGroup
	results := make(chan Summary, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- Aggregate(recs, scope3, Last(6))
		}()
	}
	wg.Wait()
	close(results)

	count := 0
	for got := range results {
		assert.Equal(t, want, got)
		count++
	}
	assert.Equal(t, goroutines, count)
}
