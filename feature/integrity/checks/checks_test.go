package checks

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"media-cleaner/core/database"
	"media-cleaner/core/storage/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/minio/minio-go/v7"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestCheckMedia(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := CheckMedia(fs, "/media/catalog")
	assert.ErrorContains(t, err, "does not exist")

	require.NoError(t, fs.MkdirAll("/media/catalog/product", 0o755))
	missing, err := CheckMedia(fs, "/media/catalog")
	require.NoError(t, err)
	assert.Equal(t, []string{"product/cache"}, missing)

	require.NoError(t, FixMedia(fs, "/media/catalog", zap.NewNop(), missing))
	missing, err = CheckMedia(fs, "/media/catalog")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestFixMedia_ReadOnly(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	err := FixMedia(fs, "/media/catalog", zap.NewNop(), []string{"product"})
	assert.Error(t, err)
}

func TestCheckCatalog_NilDB(t *testing.T) {
	report, err := CheckCatalog(nil, "catalog_product_entity_media_gallery")
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestCheckCatalog_Matched(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
	rows.AddRow("value_id", "int(10) unsigned", "NO", "PRI", nil, "auto_increment")
	rows.AddRow("attribute_id", "smallint(5) unsigned", "NO", "MUL", "0", "")
	rows.AddRow("value", "varchar(255)", "YES", "", nil, "")
	rows.AddRow("media_type", "varchar(32)", "NO", "", "image", "")
	mock.ExpectQuery("SHOW COLUMNS FROM `catalog_product_entity_media_gallery`").WillReturnRows(rows)

	report, err := CheckCatalog(db, "catalog_product_entity_media_gallery")
	require.NoError(t, err)
	assert.True(t, report.Matched)
	assert.Empty(t, report.MissingColumns)
	assert.Empty(t, report.TypeMismatches)
}

func TestCheckCatalog_Mismatch(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
	rows.AddRow("value_id", "int(10) unsigned", "NO", "PRI", nil, "auto_increment")
	rows.AddRow("attribute_id", "text", "NO", "", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `catalog_product_entity_media_gallery`").WillReturnRows(rows)

	report, err := CheckCatalog(db, "catalog_product_entity_media_gallery")
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.Equal(t, []string{"value"}, report.MissingColumns)
	require.Len(t, report.TypeMismatches, 1)
	assert.Contains(t, report.TypeMismatches[0], "attribute_id")
}

func TestCheckCatalog_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SHOW COLUMNS").WillReturnError(errors.New("no such table"))

	report, err := CheckCatalog(db, "catalog_product_entity_media_gallery")
	require.NoError(t, err)
	assert.False(t, report.Matched)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "no such table")
}

func TestCheckCatalog_SQLite(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE catalog_product_entity_media_gallery (value_id INTEGER PRIMARY KEY, attribute_id SMALLINT, value VARCHAR(255))").Error)

	report, err := CheckCatalog(db, "catalog_product_entity_media_gallery")
	require.NoError(t, err)
	assert.True(t, report.Matched, "%+v", report)

	missing, err := CheckCatalog(db, "missing_table")
	require.NoError(t, err)
	assert.False(t, missing.Matched)
}

func TestCheckStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("NotConfigured", func(t *testing.T) {
		_, err := CheckStorage(ctx, nil, "media", nil)
		assert.Error(t, err)
	})

	t.Run("BucketMissing", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "media").Return(false, nil)

		_, err := CheckStorage(ctx, client, "media", nil)
		assert.ErrorContains(t, err, "does not exist")
	})

	t.Run("Objects", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "media").Return(true, nil)
		client.On("GetObject", ctx, "media", "refs.txt", minio.GetObjectOptions{}).
			Return(io.NopCloser(strings.NewReader("/a/b/c.jpg\n")), nil)
		client.On("GetObject", ctx, "media", "empty.txt", minio.GetObjectOptions{}).
			Return(io.NopCloser(strings.NewReader("")), nil)
		client.On("GetObject", ctx, "media", "gone.txt", mock.Anything).
			Return(nil, errors.New("NoSuchKey"))

		missing, err := CheckStorage(ctx, client, "media", []string{"refs.txt", "empty.txt", "gone.txt"})
		require.NoError(t, err)
		assert.Equal(t, []string{"gone.txt"}, missing)
	})
}
