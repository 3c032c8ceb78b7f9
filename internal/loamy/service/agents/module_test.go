package agents

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/entity"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/service/runtime"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/pkg/errno"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoBackend struct{}

func (echoBackend) Generate(_ context.Context, req *runtime.Request) (*schema.Message, error) {
	return schema.AssistantMessage("echo: "+req.Messages[len(req.Messages)-1].Content, nil), nil
}

func TestModuleStores(t *testing.T) {
	for _, store := range []string{StoreInMemory, StoreBoltDB, StoreSQLite} {
		t.Run(store, func(t *testing.T) {
			dir := t.TempDir()
			cfg := &Config{
				StoreType: store,
				StorePath: filepath.Join(dir, "data", "loamy.db"),
				StaticDir: filepath.Join(dir, "static"),
				Seed:      true,
			}
			m, err := cfg.Complete().New(context.Background(), Dependencies{Backend: echoBackend{}})
			require.NoError(t, err)
			defer m.Close()

			c, err := m.Customers.Get(context.Background(), "alice")
			require.NoError(t, err)
			assert.Equal(t, 780, c.CreditScore)
			assert.Len(t, m.Orchestrator.Catalog(), 3)

			conv, err := entity.NewConversation(entity.NewUserTurn("hello"))
			require.NoError(t, err)
			out := m.Orchestrator.Run(context.Background(), conv)
			require.True(t, out.OK())
			assert.Equal(t, "echo: hello", out.Reply)
		})
	}
}

func TestModuleRejects(t *testing.T) {
	_, err := (&Config{StoreType: StoreInMemory}).Complete().New(context.Background(), Dependencies{})
	assert.Error(t, err)

	_, err = (&Config{StoreType: "redis", StaticDir: t.TempDir()}).Complete().New(context.Background(), Dependencies{Backend: echoBackend{}})
	assert.Error(t, err)
}

func TestComplete(t *testing.T) {
	c := (&Config{}).Complete()
	assert.Equal(t, runtime.DefaultMaxSteps, c.MaxSteps)
	assert.Equal(t, StoreSQLite, c.StoreType)
	assert.Equal(t, "static", c.StaticDir)
}

// bindingBackend records the catalog bound at module construction.
type bindingBackend struct {
	echoBackend
	bound []*schema.ToolInfo
	err   error
}

func (b *bindingBackend) BindTools(tools []*schema.ToolInfo) error {
	if b.err != nil {
		return b.err
	}
	b.bound = tools
	return nil
}

func TestModuleBindsToolsOnce(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{StoreType: StoreInMemory, StaticDir: filepath.Join(dir, "static")}

	backend := &bindingBackend{}
	m, err := cfg.Complete().New(context.Background(), Dependencies{Backend: backend})
	require.NoError(t, err)
	defer m.Close()
	require.Len(t, backend.bound, 3)
	assert.Equal(t, string(entity.ToolVerifyStatus), backend.bound[0].Name)

	failing := &bindingBackend{err: errno.ErrToolBinding}
	_, err = cfg.Complete().New(context.Background(), Dependencies{Backend: failing})
	assert.True(t, errors.Is(err, errno.ErrToolBinding))
}
