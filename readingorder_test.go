package readingorder

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/histpath/readingorder/format"
	"github.com/histpath/readingorder/layout"
	"github.com/histpath/readingorder/model"
)

func box(cx, cy float64) []float64 {
	return []float64{cx - 5, cy - 5, cx + 5, cy - 5, cx + 5, cy + 5, cx - 5, cy + 5}
}

func sampleDetections() []model.Detection {
	return []model.Detection{
		{Text: "天", Confidence: 0.9, Polygon: box(500, 10)},
		{Text: "下", Confidence: 0.8, Polygon: box(505, 50)},
		{Text: "太", Confidence: 0.7, Polygon: box(10, 30)},
	}
}

const twoPageAzure = `{"analyzeResult":{"pages":[
  {"pageNumber":1,"words":[
    {"content":"天","polygon":[495,5,505,5,505,15,495,15],"confidence":0.9},
    {"content":"下","polygon":[500,45,510,45,510,55,500,55],"confidence":0.8},
    {"content":"太","polygon":[5,25,15,25,15,35,5,35],"confidence":0.7}
  ]},
  {"pageNumber":2,"words":[
    {"content":"平","polygon":[5,5,15,5,15,15,5,15],"confidence":0.2}
  ]}
]}}`

func TestOpen(t *testing.T) {
	// Test with non-existent file
	_, _, err := Open("nonexistent.json").Text()
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestFromDetections_Text(t *testing.T) {
	text, warnings, err := FromDetections(sampleDetections()).Text()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "天下太" {
		t.Errorf("Text() = %q, want %q", text, "天下太")
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %s", FormatWarnings(warnings))
	}
}

func TestSequence_SinglePage(t *testing.T) {
	seq, _, err := FromDetections(sampleDetections()).Sequence()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seq.ColumnCount() != 2 {
		t.Errorf("expected 2 columns, got %d", seq.ColumnCount())
	}
}

func TestSequential(t *testing.T) {
	lines, _, err := FromDetections(sampleDetections()).Sequential(50).Lines()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 || lines[0] != "天下" || lines[1] != "太" {
		t.Errorf("Lines() = %v", lines)
	}
}

func TestInvalidStrategyConfig(t *testing.T) {
	_, _, err := FromDetections(sampleDetections()).DensityBased(0).Text()
	if !errors.Is(err, layout.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}

	_, _, err = FromDetections(sampleDetections()).MinSamples(0).Text()
	if !errors.Is(err, layout.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestMinSamplesAndReassignCap(t *testing.T) {
	dets := []model.Detection{
		{Text: "a", Confidence: 1, Polygon: box(100, 10)},
		{Text: "b", Confidence: 1, Polygon: box(102, 20)},
		{Text: "x", Confidence: 1, Polygon: box(9999, 30)},
	}

	seq, _, err := FromDetections(dets).MinSamples(2).Sequence()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seq.ColumnCount() != 1 {
		t.Errorf("expected outlier reassigned into 1 column, got %d", seq.ColumnCount())
	}

	seq, _, err = FromDetections(dets).MinSamples(2).MaxReassignDistance(500).Sequence()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seq.ColumnCount() != 2 {
		t.Errorf("expected capped outlier in its own column, got %d", seq.ColumnCount())
	}
	if seq.FullText() != "xab" {
		t.Errorf("FullText() = %q, want %q", seq.FullText(), "xab")
	}
}

func TestImmutability(t *testing.T) {
	base := FromDetections(sampleDetections())
	_ = base.Sequential(-1)

	if _, _, err := base.Text(); err != nil {
		t.Errorf("derived orderer changed its parent: %v", err)
	}
}

func TestFromBytes_MultiPage(t *testing.T) {
	ord := FromBytes([]byte(twoPageAzure), format.Unknown)

	count, err := ord.PageCount()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("PageCount() = %d, want 2", count)
	}

	text, warnings, err := ord.Text()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "天下太\n\n平" {
		t.Errorf("Text() = %q", text)
	}

	if len(warnings) != 1 || warnings[0].Type != WarningLowConfidence || warnings[0].Page != 2 {
		t.Errorf("expected low confidence warning on page 2, got %v", warnings)
	}

	if _, _, err := ord.Sequence(); err == nil {
		t.Error("expected error ordering a multi-page input as one sequence")
	}

	seq, _, err := ord.Pages(2).Sequence()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seq.FullText() != "平" {
		t.Errorf("page 2 FullText() = %q", seq.FullText())
	}
}

func TestPages_Validation(t *testing.T) {
	ord := FromBytes([]byte(twoPageAzure), format.AzureJSON)

	if _, _, err := ord.Pages(3).Text(); err == nil {
		t.Error("expected error for page out of range")
	}
	if _, _, err := ord.Pages(0).Text(); err == nil {
		t.Error("expected error for page 0")
	}
	if _, _, err := ord.PageRange(2, 1).Text(); err == nil {
		t.Error("expected error for inverted range")
	}

	results, _, err := ord.PageRange(1, 2).Pages(1).Results()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected duplicate pages collapsed to 2 results, got %d", len(results))
	}
	if results[0].Page != 1 || results[1].Page != 2 {
		t.Errorf("unexpected result pages %d, %d", results[0].Page, results[1].Page)
	}
}

func TestWarnings_DroppedAndEmpty(t *testing.T) {
	dets := []model.Detection{
		{Text: "bad", Confidence: 1, Polygon: []float64{1, 2, 3}},
	}

	_, warnings, err := FromDetections(dets).Text()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %s", len(warnings), FormatWarnings(warnings))
	}
	if warnings[0].Type != WarningDroppedDetection {
		t.Errorf("first warning = %v, want dropped detection", warnings[0].Type)
	}
	if warnings[1].Type != WarningEmptyPage {
		t.Errorf("second warning = %v, want empty page", warnings[1].Type)
	}
	if !strings.HasPrefix(FormatWarnings(warnings), "page 1: dropped detection:") {
		t.Errorf("unexpected formatting: %s", FormatWarnings(warnings))
	}
}

func TestNormalizeText(t *testing.T) {
	dets := []model.Detection{{Text: "Ａ１", Confidence: 1, Polygon: box(0, 0)}}
	doc := model.NewDocument("memory", "")
	page := model.NewPage(0, 0)
	page.AddDetection(dets[0])
	doc.AddPage(page)

	text, _, err := FromDocument(doc).NormalizeText().Text()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "A1" {
		t.Errorf("Text() = %q, want %q", text, "A1")
	}
	if doc.Pages[0].Detections[0].Text != "Ａ１" {
		t.Error("normalization modified the caller's document")
	}
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analyze.json")
	if err := os.WriteFile(path, []byte(twoPageAzure), 0o644); err != nil {
		t.Fatal(err)
	}

	text := MustText(Open(path).Pages(1).Text())
	if text != "天下太" {
		t.Errorf("Text() = %q", text)
	}

	doc := Must(Open(path).Format(format.AzureJSON).Document())
	if doc.Source != path {
		t.Errorf("Source = %q", doc.Source)
	}
}

func TestMust_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Must(Open("nonexistent.json").PageCount())
}

func TestStrategy_Custom(t *testing.T) {
	_, _, err := FromDetections(sampleDetections()).
		Strategy(layout.Sequential{Threshold: -1}).
		Text()
	if !errors.Is(err, layout.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}

	text, _, err := FromDetections(sampleDetections()).
		Strategy(layout.DefaultSequential()).
		Text()
	if err != nil || text != "天下太" {
		t.Errorf("Text() = %q, %v", text, err)
	}
}

func TestWarnings_ScriptAndOrientation(t *testing.T) {
	dets := []model.Detection{
		{Text: "Preface", Confidence: 1, Rect: &model.BBox{X: 0, Y: 0, Width: 140, Height: 20}},
		{Text: "to the reader", Confidence: 1, Rect: &model.BBox{X: 0, Y: 40, Width: 200, Height: 20}},
	}

	_, warnings, err := FromDetections(dets).Text()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	types := make(map[WarningType]bool)
	for _, w := range warnings {
		types[w.Type] = true
	}
	if !types[WarningHorizontalText] {
		t.Errorf("expected horizontal text warning, got %s", FormatWarnings(warnings))
	}
	if !types[WarningNonCJK] {
		t.Errorf("expected non-CJK warning, got %s", FormatWarnings(warnings))
	}
	if WarningHorizontalText.String() != "horizontal text" || WarningNonCJK.String() != "non-CJK text" {
		t.Error("unexpected warning type names")
	}
}

func TestWarnings_VerticalCJKIsClean(t *testing.T) {
	dets := []model.Detection{
		{Text: "天下太平", Confidence: 1, Rect: &model.BBox{X: 400, Y: 0, Width: 20, Height: 80}},
		{Text: "國泰民安", Confidence: 1, Rect: &model.BBox{X: 360, Y: 0, Width: 20, Height: 80}},
	}

	text, warnings, err := FromDetections(dets).Text()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "天下太平國泰民安" {
		t.Errorf("Text() = %q", text)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %s", FormatWarnings(warnings))
	}
}

func TestReconstruct(t *testing.T) {
	seq, err := Reconstruct(sampleDetections(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seq.FullText() != "天下太" {
		t.Errorf("FullText() = %q, want %q", seq.FullText(), "天下太")
	}

	seq, err = Reconstruct(sampleDetections(), layout.Sequential{Threshold: 1000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seq.ColumnCount() != 1 {
		t.Errorf("ColumnCount() = %d, want 1", seq.ColumnCount())
	}

	if _, err := Reconstruct(sampleDetections(), layout.DensityBased{Eps: 0, MinSamples: 1}); !errors.Is(err, layout.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}
