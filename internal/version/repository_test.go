package version

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newRepoWithMock(t *testing.T) (VersionRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewRepository(gdb), mock
}

const maxVersionQuery = `SELECT COALESCE\(MAX\(version_number\), 0\) FROM "page_versions" WHERE page_id = \$1`

func TestRepository_Create_NextNumber(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(maxVersionQuery).WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(3))
	mock.ExpectExec(`INSERT INTO "page_versions"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	v := &PageVersion{PageID: "p1", Content: []byte(`[]`)}
	require.NoError(t, repo.Create(context.Background(), v))
	assert.Equal(t, 4, v.VersionNumber)
	assert.NotEmpty(t, v.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create_FirstVersion(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(maxVersionQuery).WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO "page_versions"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	v := &PageVersion{PageID: "p1"}
	require.NoError(t, repo.Create(context.Background(), v))
	assert.Equal(t, 1, v.VersionNumber)
}

func TestRepository_Create_RollsBackOnInsertError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(maxVersionQuery).WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(1))
	mock.ExpectExec(`INSERT INTO "page_versions"`).WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &PageVersion{PageID: "p1"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListRecent(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	cols := []string{"id", "page_id", "version_number", "content", "label", "meta_title", "meta_description", "created_by", "created_at"}
	mock.ExpectQuery(`SELECT \* FROM "page_versions" WHERE page_id = \$1 ORDER BY version_number DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("v3", "p1", 3, []byte(`[]`), "", "", "", "", now).
			AddRow("v2", "p1", 2, []byte(`[]`), "", "", "", "", now))

	versions, err := repo.ListRecent(context.Background(), "p1", 2)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 3, versions[0].VersionNumber)
	assert.Equal(t, 2, versions[1].VersionNumber)
}
