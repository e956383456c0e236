package db

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDao(t *testing.T) ModelDao {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "model-hub.db")
	gdb, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	InitTables(gdb)
	return NewModelSvcDB(gdb)
}

func newRow(owner, name string, version int64) *SavedModel {
	id := fmt.Sprintf("%s-%s-v%d", owner, name, version)
	return &SavedModel{
		Id:            id,
		Owner:         owner,
		Name:          name,
		Version:       version,
		TargetChip:    "STM32F401",
		Metrics:       "{}",
		ModelBlobPath: fmt.Sprintf("%s/%s/model.bin", owner, id),
	}
}

func TestNextVersionMonotonic(t *testing.T) {
	dao := newTestDao(t)

	for want := int64(1); want <= 3; want++ {
		got, err := dao.NextVersion("alice", "mnist")
		require.NoError(t, err)
		require.Equal(t, want, got)
		require.NoError(t, dao.CreateModel(newRow("alice", "mnist", got)))
	}

	// a different name for the same owner starts over at 1
	got, err := dao.NextVersion("alice", "cifar")
	require.NoError(t, err)
	require.Equal(t, int64(1), got)

	// the same name for a different owner starts over at 1
	got, err = dao.NextVersion("bob", "mnist")
	require.NoError(t, err)
	require.Equal(t, int64(1), got)
}

func TestGetModelScopedToOwner(t *testing.T) {
	dao := newTestDao(t)
	row := newRow("alice", "mnist", 1)
	require.NoError(t, dao.CreateModel(row))

	got, err := dao.GetModel("alice", row.Id)
	require.NoError(t, err)
	require.Equal(t, row.Id, got.Id)
	require.Equal(t, int64(1), got.Version)
	require.False(t, got.IsDeployed)

	_, err = dao.GetModel("mallory", row.Id)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListModelsScopedToOwner(t *testing.T) {
	dao := newTestDao(t)
	require.NoError(t, dao.CreateModel(newRow("alice", "mnist", 1)))
	require.NoError(t, dao.CreateModel(newRow("alice", "mnist", 2)))
	require.NoError(t, dao.CreateModel(newRow("bob", "cifar", 1)))

	rows, err := dao.ListModels("alice")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.Equal(t, "alice", row.Owner)
	}

	rows, err = dao.ListModels("carol")
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestDeleteModelScopedToOwner(t *testing.T) {
	dao := newTestDao(t)
	row := newRow("alice", "mnist", 1)
	require.NoError(t, dao.CreateModel(row))

	err := dao.DeleteModel("mallory", row.Id)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// still there for the real owner
	_, err = dao.GetModel("alice", row.Id)
	require.NoError(t, err)

	require.NoError(t, dao.DeleteModel("alice", row.Id))
	_, err = dao.GetModel("alice", row.Id)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreateModelDuplicateId(t *testing.T) {
	dao := newTestDao(t)
	row := newRow("alice", "mnist", 1)
	require.NoError(t, dao.CreateModel(row))

	err := dao.CreateModel(newRow("alice", "mnist", 1))
	require.Error(t, err)
}

func TestSetDeployed(t *testing.T) {
	dao := newTestDao(t)
	row := newRow("alice", "mnist", 1)
	require.NoError(t, dao.CreateModel(row))

	require.NoError(t, dao.SetDeployed("alice", row.Id, true))
	got, err := dao.GetModel("alice", row.Id)
	require.NoError(t, err)
	require.True(t, got.IsDeployed)

	err = dao.SetDeployed("mallory", row.Id, false)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
