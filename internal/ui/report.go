package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/ezoic/wattwise/forecast"
	"github.com/ezoic/wattwise/simulation"
	"github.com/ezoic/wattwise/training"
	"github.com/ezoic/wattwise/weather"
)

func row(label, value string) string {
	return fmt.Sprintf("%s %s", Dim.Render(fmt.Sprintf("%-22s", label)), value)
}

// DatasetReport summarizes a generated dataset.
func DatasetReport(s simulation.Summary) string {
	var b strings.Builder
	b.WriteString(Title.Render("Dataset") + "\n")
	b.WriteString(row("records", fmt.Sprintf("%d", s.Count)) + "\n")
	b.WriteString(Muted.Render(fmt.Sprintf("%-22s %8s %8s %8s %8s %8s", "column", "mean", "std", "min", "max", "corr")) + "\n")
	for _, c := range s.Columns {
		b.WriteString(fmt.Sprintf("%-22s %8.2f %8.2f %8.2f %8.2f %8.3f\n", c.Name, c.Mean, c.Std, c.Min, c.Max, c.Correlation))
	}
	return Box.Render(strings.TrimRight(b.String(), "\n"))
}

// TrainingReport summarizes a training run.
func TrainingReport(res *training.Result, modelPath string) string {
	var b strings.Builder
	b.WriteString(Title.Render("Training") + "\n")
	b.WriteString(row("run", res.RunID) + "\n")
	b.WriteString(row("train / test", fmt.Sprintf("%d / %d", res.TrainSize, res.TestSize)) + "\n")
	b.WriteString(row("duration", res.Duration.Round(time.Millisecond).String()) + "\n")

	r2 := fmt.Sprintf("%.4f", res.Metrics.R2)
	if res.Metrics.R2 > 0.8 {
		r2 = GetCheckMark() + " " + Success.Render(r2)
	} else {
		r2 = GetWarnMark() + " " + Warning.Render(r2)
	}
	b.WriteString(row("R²", r2) + "\n")
	b.WriteString(row("RMSE", fmt.Sprintf("%.4f", res.Metrics.RMSE)) + "\n")
	b.WriteString(row("MAE", fmt.Sprintf("%.4f", res.Metrics.MAE)) + "\n")
	if res.Baseline != nil {
		b.WriteString(row("linear baseline R²", Muted.Render(fmt.Sprintf("%.4f", res.Baseline.Metrics.R2))) + "\n")
	}

	if len(res.Importance) > 0 {
		b.WriteString("\n" + Bold.Render("Feature importance") + "\n")
		for _, imp := range res.Importance {
			bar := strings.Repeat("█", int(imp.Split*40+0.5))
			b.WriteString(fmt.Sprintf("%-14s %s %s\n", imp.Feature, Primary.Render(bar), Muted.Render(fmt.Sprintf("%.1f%%", imp.Split*100))))
		}
	}
	if modelPath != "" {
		b.WriteString("\n" + row("saved to", Secondary.Render(modelPath)))
	}
	return Box.Render(strings.TrimRight(b.String(), "\n"))
}

// PredictionReport renders one hourly prediction and its advice.
func PredictionReport(s weather.Sample, efficiency float64, advice string) string {
	cat := forecast.CategorizeEfficiency(efficiency)
	app := forecast.ApplianceStatus(efficiency)

	var b strings.Builder
	b.WriteString(Title.Render(fmt.Sprintf("%s %02d:00, day %d", forecast.TimeEmoji(s.HourOfDay), s.HourOfDay, s.DayOfYear)) + "\n")
	b.WriteString(row("conditions", fmt.Sprintf("%.1f°C, %.0f%% cloud, %.0f%% humidity", s.Temperature, s.CloudCover, s.Humidity)) + "\n")
	b.WriteString(row("efficiency", Bold.Render(fmt.Sprintf("%.1f%%", efficiency))+" "+cat.String()) + "\n")
	b.WriteString(row("appliances", ForStatus(app.Status).Render(app.Status)+" "+Muted.Render(app.Mode)))
	if advice != "" {
		b.WriteString("\n\n" + advice)
	}
	return Box.Render(b.String())
}

// ReadingsTable lists store readings, newest first.
func ReadingsTable(readings []weather.Reading) string {
	if len(readings) == 0 {
		return Muted.Render("no readings recorded yet")
	}
	var b strings.Builder
	b.WriteString(Muted.Render(fmt.Sprintf("%6s  %-20s %-12s %7s %7s %7s", "id", "timestamp", "city", "temp", "cloud", "humid")) + "\n")
	for _, r := range readings {
		b.WriteString(fmt.Sprintf("%6d  %-20s %-12s %7.2f %7.2f %7.2f\n",
			r.ID, r.Timestamp.Local().Format("2006-01-02 15:04:05"), r.City, r.Temperature, r.CloudCover, r.Humidity))
	}
	return strings.TrimRight(b.String(), "\n")
}
