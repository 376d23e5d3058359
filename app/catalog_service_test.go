package app

import (
	"context"
	"testing"

	"gocatalog/adapters/excel"
	"gocatalog/adapters/llm"
	"gocatalog/ai"
	"gocatalog/domain/sheet"
	"gocatalog/internal/errors"
	"gocatalog/internal/logging"
	"gocatalog/internal/mapping"
	"gocatalog/internal/synthesis"
	"gocatalog/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// steppedGateway hands each call its own release channel so tests decide
// the order in which responses complete.
type steppedGateway struct {
	started chan int
	release []chan string
	next    int
}

func newSteppedGateway(calls int) *steppedGateway {
	g := &steppedGateway{started: make(chan int, calls)}
	for i := 0; i < calls; i++ {
		g.release = append(g.release, make(chan string, 1))
	}
	return g
}

func (g *steppedGateway) wait(ctx context.Context) (string, error) {
	// Calls are issued one at a time by the tests, so next is not raced.
	idx := g.next
	g.next++
	g.started <- idx
	select {
	case resp := <-g.release[idx]:
		return resp, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (g *steppedGateway) Converse(ctx context.Context, _ string, _ []ports.Turn, _ string) (string, error) {
	return g.wait(ctx)
}

func (g *steppedGateway) Summarize(ctx context.Context, _, _ string) (string, error) {
	return g.wait(ctx)
}

func (g *steppedGateway) Provider() string { return "stepped" }
func (g *steppedGateway) Model() string    { return "stepped" }

func newTestService(t *testing.T, gateway ports.ModelGateway) *CatalogService {
	t.Helper()
	logger := logging.Nop()
	prompts, err := ai.NewPromptManager("", logger)
	require.NoError(t, err)

	return NewCatalogService(
		mapping.NewColumnMapper(nil, mapping.MapperOptions{}, logger),
		synthesis.NewRowMaterializer(synthesis.NewFieldSynthesizer(nil), logger),
		ai.NewEnrichmentOrchestrator(gateway, prompts, logger),
		ai.NewAssistantDialogueRouter(gateway, prompts, logger),
		logger,
	)
}

func fixtureSheets(t *testing.T) (*sheet.Data, *sheet.Data) {
	t.Helper()
	template, err := sheet.New([]string{"SKU", "Title", "Selling Price", "Search Keywords"}, nil)
	require.NoError(t, err)

	raw, err := sheet.New(
		[]string{"Style Code", "Brand Name", "Model Name", "Price", "Material", "Color"},
		[]sheet.Row{
			{"Style Code": "AC-1", "Brand Name": "Acme", "Model Name": "Runner Shoe", "Price": "1999", "Material": "Mesh", "Color": "Blue"},
			{"Style Code": "AC-2", "Brand Name": "Acme", "Model Name": "Trail Shoe", "Price": "2499", "Material": "Leather"},
		},
	)
	require.NoError(t, err)
	return template, raw
}

func TestCreateDetectsMapping(t *testing.T) {
	svc := newTestService(t, &llm.MockGateway{Error: ports.ErrGatewayUnavailable})
	template, raw := fixtureSheets(t)

	view, err := svc.Create(template, raw)
	require.NoError(t, err)

	assert.Equal(t, "Style Code", view.Mapping["SKU"])
	assert.Equal(t, "Price", view.Mapping["Selling Price"])
	assert.Contains(t, view.Unmapped, "Title")
	assert.Equal(t, 2, view.RawRowCount)
	assert.Equal(t, 1, svc.Len())
}

func TestCreateRequiresBothSheets(t *testing.T) {
	svc := newTestService(t, &llm.MockGateway{})
	_, err := svc.Create(nil, nil)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestOverrideSurvivesUntilDetect(t *testing.T) {
	svc := newTestService(t, &llm.MockGateway{})
	template, raw := fixtureSheets(t)
	view, err := svc.Create(template, raw)
	require.NoError(t, err)
	id := view.ID.String()

	view, err = svc.Override(id, "Title", "Model Name")
	require.NoError(t, err)
	assert.Equal(t, "Model Name", view.Mapping["Title"])
	for _, m := range view.Trace {
		if m.TemplateHeader == "Title" {
			assert.Equal(t, mapping.TierOverride, m.Tier)
		}
	}

	preview, err := svc.Preview(id)
	require.NoError(t, err)
	assert.Equal(t, "Runner Shoe", preview.Rows[0]["Title"])

	view, err = svc.Detect(id)
	require.NoError(t, err)
	_, ok := view.Mapping.Lookup("Title")
	assert.False(t, ok)

	preview, err = svc.Preview(id)
	require.NoError(t, err)
	assert.Equal(t, "Acme Runner Shoe", preview.Rows[0]["Title"])
}

func TestOverrideValidatesHeaders(t *testing.T) {
	svc := newTestService(t, &llm.MockGateway{})
	template, raw := fixtureSheets(t)
	view, err := svc.Create(template, raw)
	require.NoError(t, err)
	id := view.ID.String()

	_, err = svc.Override(id, "Nope", "Price")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = svc.Override(id, "Title", "Nope")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	view, err = svc.Override(id, "SKU", "")
	require.NoError(t, err)
	assert.Contains(t, view.Unmapped, "SKU")
}

func TestPreviewAndExport(t *testing.T) {
	svc := newTestService(t, &llm.MockGateway{})
	template, raw := fixtureSheets(t)
	view, err := svc.Create(template, raw)
	require.NoError(t, err)
	id := view.ID.String()

	preview, err := svc.Preview(id)
	require.NoError(t, err)
	assert.Equal(t, template.Headers, preview.Headers)
	assert.Len(t, preview.Rows, 2)
	assert.Equal(t, "mesh, blue", preview.Rows[0]["Search Keywords"])
	assert.Equal(t, "leather", preview.Rows[1]["Search Keywords"])

	content, err := svc.Export(id, excel.FormatXLSX)
	require.NoError(t, err)
	decoded, err := excel.DecodeBytes("catalog.xlsx", content)
	require.NoError(t, err)
	assert.Equal(t, template.Headers, decoded.Headers)
	assert.Len(t, decoded.Rows, 2)
	assert.Equal(t, "AC-2", decoded.Rows[1]["SKU"])

	_, err = svc.Export(id, excel.Format("pdf"))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestCoverage(t *testing.T) {
	svc := newTestService(t, &llm.MockGateway{})
	template, raw := fixtureSheets(t)
	view, err := svc.Create(template, raw)
	require.NoError(t, err)

	coverage, err := svc.Coverage(view.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, coverage.Rows)
	require.Len(t, coverage.Columns, len(template.Headers))
	assert.Equal(t, synthesis.SourceMapped, coverage.Columns[0].Source)
	assert.Equal(t, synthesis.SourceSynthesized, coverage.Columns[1].Source)
}

func TestUnknownSessionIsNotFound(t *testing.T) {
	svc := newTestService(t, &llm.MockGateway{})

	_, err := svc.Get("not-a-uuid")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	_, err = svc.Preview("6f1c2f0e-0000-4000-8000-000000000000")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	assert.Equal(t, errors.CodeNotFound, errors.GetCode(svc.Delete("6f1c2f0e-0000-4000-8000-000000000000")))
}

func TestDelete(t *testing.T) {
	svc := newTestService(t, &llm.MockGateway{})
	template, raw := fixtureSheets(t)
	view, err := svc.Create(template, raw)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(view.ID.String()))
	assert.Equal(t, 0, svc.Len())
	_, err = svc.Get(view.ID.String())
	assert.Error(t, err)
}

func TestEnrichUnavailableStoresFallback(t *testing.T) {
	svc := newTestService(t, &llm.MockGateway{Error: ports.ErrGatewayUnavailable})
	template, raw := fixtureSheets(t)
	view, err := svc.Create(template, raw)
	require.NoError(t, err)

	result, err := svc.Enrich(context.Background(), view.ID.String(), "Amazon")
	require.NoError(t, err)
	assert.False(t, result.Stale)
	assert.Equal(t, ai.FallbackInsights, result.Insights)

	view, err = svc.Get(view.ID.String())
	require.NoError(t, err)
	assert.Equal(t, ai.FallbackInsights, view.Insights)
}

func TestStaleEnrichmentDoesNotOverwrite(t *testing.T) {
	gateway := newSteppedGateway(2)
	svc := newTestService(t, gateway)
	template, raw := fixtureSheets(t)
	view, err := svc.Create(template, raw)
	require.NoError(t, err)
	id := view.ID.String()

	older := make(chan *EnrichResult, 1)
	go func() {
		result, _ := svc.Enrich(context.Background(), id, "Amazon")
		older <- result
	}()
	require.Equal(t, 0, <-gateway.started)

	newer := make(chan *EnrichResult, 1)
	go func() {
		result, _ := svc.Enrich(context.Background(), id, "Amazon")
		newer <- result
	}()
	require.Equal(t, 1, <-gateway.started)

	gateway.release[1] <- "- newer insight"
	newest := <-newer
	assert.False(t, newest.Stale)

	gateway.release[0] <- "- older insight"
	stale := <-older
	assert.True(t, stale.Stale)
	assert.Equal(t, []string{"older insight"}, stale.Insights)

	view, err = svc.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []string{"newer insight"}, view.Insights)
}

func TestChatKeepsHistoryAndDropsStaleReplies(t *testing.T) {
	gateway := newSteppedGateway(3)
	svc := newTestService(t, gateway)
	template, raw := fixtureSheets(t)
	view, err := svc.Create(template, raw)
	require.NoError(t, err)
	id := view.ID.String()

	first := make(chan *ChatResult, 1)
	go func() {
		result, _ := svc.Chat(context.Background(), id, "hello")
		first <- result
	}()
	<-gateway.started
	gateway.release[0] <- "hi there"
	assert.False(t, (<-first).Stale)

	older := make(chan *ChatResult, 1)
	go func() {
		result, _ := svc.Chat(context.Background(), id, "older question")
		older <- result
	}()
	<-gateway.started

	newer := make(chan *ChatResult, 1)
	go func() {
		result, _ := svc.Chat(context.Background(), id, "newer question")
		newer <- result
	}()
	<-gateway.started

	gateway.release[2] <- "newer answer"
	assert.False(t, (<-newer).Stale)
	gateway.release[1] <- "older answer"
	assert.True(t, (<-older).Stale)

	view, err = svc.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []ports.Turn{
		{Role: ports.RoleUser, Content: "hello"},
		{Role: ports.RoleAssistant, Content: "hi there"},
		{Role: ports.RoleUser, Content: "newer question"},
		{Role: ports.RoleAssistant, Content: "newer answer"},
	}, view.History)
}
