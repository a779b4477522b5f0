package page

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newRepoWithMock(t *testing.T) (PageRepository, sqlmock.Sqlmock) {
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

var pageColumns = []string{"id", "slug", "title", "content", "is_home", "meta_title", "meta_description", "created_at", "updated_at"}

func TestRepository_FindBySlug(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	rows := sqlmock.NewRows(pageColumns).
		AddRow("p1", "about", "About", []byte(`[{"id":"t","type":"text"}]`), false, "", "", now, now)
	mock.ExpectQuery(`SELECT \* FROM "pages" WHERE slug = \$1`).WillReturnRows(rows)

	p, err := repo.FindBySlug(context.Background(), "about")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)

	blocks, err := p.Blocks()
	require.NoError(t, err)
	assert.Len(t, blocks, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindBySlug_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT \* FROM "pages" WHERE slug = \$1`).WillReturnRows(sqlmock.NewRows(pageColumns))

	_, err := repo.FindBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_FindHome_NewestFirst(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "pages" WHERE is_home = \$1 ORDER BY updated_at DESC`).
		WillReturnRows(sqlmock.NewRows(pageColumns).AddRow("h1", "home", "Home", []byte(`[]`), true, "", "", now, now))

	p, err := repo.FindHome(context.Background())
	require.NoError(t, err)
	assert.True(t, p.IsHome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateContent(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "pages" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT \* FROM "pages" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(pageColumns).AddRow("p1", "about", "About", []byte(`[]`), false, "About", "", now, now))

	p, err := repo.UpdateContent(context.Background(), "p1", []byte(`[]`), Meta{MetaTitle: "About"})
	require.NoError(t, err)
	assert.Equal(t, "About", p.MetaTitle)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateContent_MissingPage(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "pages" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	_, err := repo.UpdateContent(context.Background(), "gone", []byte(`[]`), Meta{})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_List(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .*"slug".* FROM "pages" ORDER BY slug ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "title", "is_home", "meta_title", "meta_description", "created_at", "updated_at"}).
			AddRow("p1", "about", "About", false, "", "", now, now).
			AddRow("h1", "home", "Home", true, "", "", now, now))

	pages, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, pages, 2)
}
