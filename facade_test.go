package linkml

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	infos []string
}

func (l *recordingLogger) Debug(msg string, kv ...any) {}
func (l *recordingLogger) Info(msg string, kv ...any)  { l.infos = append(l.infos, msg) }
func (l *recordingLogger) Warn(msg string, kv ...any)  {}
func (l *recordingLogger) Error(msg string, kv ...any) {}

type inlineTaskManager struct {
	spawned []string
	cancel  context.CancelFunc
}

func (m *inlineTaskManager) Spawn(ctx context.Context, name string, fn func(context.Context)) error {
	m.spawned = append(m.spawned, name)
	return nil
}
func (m *inlineTaskManager) CancelAll() {}
func (m *inlineTaskManager) Wait()      {}

type fakeConfigSource struct {
	ch chan LinkMLConfig
}

func (f *fakeConfigSource) Subscribe(ctx context.Context) (<-chan LinkMLConfig, error) {
	return f.ch, nil
}

func TestServiceLoadSchemaCachesByPath(t *testing.T) {
	schema := NewSchema("root")
	schema.ID = "root"
	schema.Slots.Set("name", &SlotDefinition{Name: "name", Range: "string"})

	loader := &fakeLoader{data: map[string][]byte{"schema.yaml": []byte("bytes")}}
	parser := &fakeParser{schemas: map[string]*Schema{"bytes": schema}}

	svc := NewService(WithLoader(loader), WithParser(parser))
	sv1, err := svc.LoadSchema(context.Background(), "schema.yaml")
	require.NoError(t, err)
	sv2, err := svc.LoadSchema(context.Background(), "schema.yaml")
	require.NoError(t, err)
	assert.Same(t, sv1, sv2)
}

func TestServiceLoadSchemaWithoutCollaboratorsErrors(t *testing.T) {
	svc := NewService()
	_, err := svc.LoadSchema(context.Background(), "schema.yaml")
	require.Error(t, err)
}

func TestServiceLoadSchemaStringParsesAndResolvesImports(t *testing.T) {
	parser := &fakeParser{schemas: map[string]*Schema{"inline": NewSchema("inline")}}
	svc := NewService(WithParser(parser))
	sv, err := svc.LoadSchemaString(context.Background(), []byte("inline"), "yaml")
	require.NoError(t, err)
	assert.NotNil(t, sv)
}

func TestServiceValidateRunsEngine(t *testing.T) {
	schema := NewSchema("root")
	required := true
	class := &ClassDefinition{Name: "Person", Slots: []string{"name"}, Attributes: NewOrderedMap[*SlotDefinition]()}
	schema.Classes.Set("Person", class)
	schema.Slots.Set("name", &SlotDefinition{Name: "name", Range: "string", Required: &required})

	sv := NewSchemaView(schema, nil)
	svc := NewService()

	report, err := svc.Validate(context.Background(), sv, objectInstance(nil), "Person")
	require.NoError(t, err)
	assert.False(t, report.Valid)
}

func TestServiceInitializeSpawnsBackgroundTasks(t *testing.T) {
	tasks := &inlineTaskManager{}
	logger := &recordingLogger{}
	svc := NewService(WithTaskManager(tasks), WithLogger(logger))

	require.NoError(t, svc.Initialize(context.Background()))
	assert.ElementsMatch(t, []string{"validator-cache-cleanup", "health-report"}, tasks.spawned)
	assert.Contains(t, logger.infos, "service initialized")

	svc.Shutdown()
	assert.Contains(t, logger.infos, "service shut down")
}

func TestServiceApplyConfigSwapsAtomically(t *testing.T) {
	svc := NewService()
	updated := DefaultConfig()
	updated.MaxValidationErrors = 7
	svc.ApplyConfig(updated)
	assert.Equal(t, 7, svc.Config().MaxValidationErrors)
}

func TestServiceWatchConfigAppliesEmittedValues(t *testing.T) {
	svc := NewService()
	src := &fakeConfigSource{ch: make(chan LinkMLConfig, 1)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, svc.WatchConfig(ctx, src))

	updated := DefaultConfig()
	updated.MaxValidationErrors = 42
	src.ch <- updated

	require.Eventually(t, func() bool {
		return svc.Config().MaxValidationErrors == 42
	}, time.Second, time.Millisecond)
}

func TestValidateTypedDecodesOnlyWhenValid(t *testing.T) {
	schema := NewSchema("root")
	class := &ClassDefinition{Name: "Person", Slots: []string{"name"}, Attributes: NewOrderedMap[*SlotDefinition]()}
	schema.Classes.Set("Person", class)
	schema.Slots.Set("name", &SlotDefinition{Name: "name", Range: "string"})

	sv := NewSchemaView(schema, nil)
	svc := NewService()

	decodeCalls := 0
	decode := func(v Value) (string, error) {
		decodeCalls++
		return "decoded", nil
	}

	typed, report, err := ValidateTyped(context.Background(), svc, sv, objectInstance(map[string]Value{"name": StringValue("x")}), "Person", decode)
	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.Equal(t, "decoded", typed)
	assert.Equal(t, 1, decodeCalls)
}
