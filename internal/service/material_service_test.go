package service

import (
	"context"
	"io"
	"mindagrow_backend/internal/model"
	"mindagrow_backend/internal/testutil"
	"mindagrow_backend/internal/util"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMaterialValidation(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	guru := testutil.CreateGuru(t, s.db, "guru", "1234567890123456")
	other := testutil.CreateGuru(t, s.db, "other", "6543210987654321")
	class := testutil.CreateClass(t, s.db, guru.ID, "MAT001")

	_, err := s.materials.Create(ctx, testutil.Claims(guru), CreateMaterialInput{ClassID: class.ID, Title: "Video", Type: model.MaterialTypeLink}, nil)
	assert.ErrorIs(t, err, util.ErrMissingLinkURL)

	_, err = s.materials.Create(ctx, testutil.Claims(guru), CreateMaterialInput{ClassID: class.ID, Title: "Modul"}, nil)
	assert.ErrorIs(t, err, util.ErrFileRequired)

	exe := testutil.FileHeader(t, "file", "modul.pdf", []byte("MZ\x90\x00\x03\x00\x00\x00\x04\x00"))
	_, err = s.materials.Create(ctx, testutil.Claims(guru), CreateMaterialInput{ClassID: class.ID, Title: "Modul"}, exe)
	assert.ErrorIs(t, err, util.ErrFileTypeForbidden)

	_, err = s.materials.Create(ctx, testutil.Claims(other), CreateMaterialInput{
		ClassID: class.ID, Title: "Tautan", Type: model.MaterialTypeLink, LinkURL: "https://example.com",
	}, nil)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	link, err := s.materials.Create(ctx, testutil.Claims(guru), CreateMaterialInput{
		ClassID: class.ID, Title: "Tautan", Type: model.MaterialTypeLink, LinkURL: "https://example.com/pecahan",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.MaterialTypeLink, link.Type)
	assert.False(t, link.HasFile())

	_, err = s.materials.OpenFile(ctx, link.ID, testutil.Claims(guru))
	assert.ErrorIs(t, err, util.ErrNoFile)
}

func TestMaterialVisibilityAndDelete(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	guru := testutil.CreateGuru(t, s.db, "guru", "1234567890123456")
	member := testutil.CreateSiswa(t, s.db, "anggota", "7101")
	outsider := testutil.CreateSiswa(t, s.db, "luar", "7102")
	class := testutil.CreateClass(t, s.db, guru.ID, "MAT002", member.ID)

	fh := testutil.FileHeader(t, "file", "ringkasan bab 1.txt", []byte("pecahan adalah bagian dari keseluruhan"))
	m, err := s.materials.Create(ctx, testutil.Claims(guru), CreateMaterialInput{ClassID: class.ID, Title: " Ringkasan "}, fh)
	require.NoError(t, err)
	assert.Equal(t, "Ringkasan", m.Title)
	assert.Equal(t, model.MaterialTypeDocument, m.Type)
	assert.Equal(t, "text/plain", m.FileMime)
	assert.True(t, strings.HasSuffix(m.FilePath, ".txt"))

	got, err := s.materials.Get(m.ID, testutil.Claims(member))
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)

	dl, err := s.materials.OpenFile(ctx, m.ID, testutil.Claims(member))
	require.NoError(t, err)
	body, err := io.ReadAll(dl.Reader)
	dl.Reader.Close()
	require.NoError(t, err)
	assert.Equal(t, "pecahan adalah bagian dari keseluruhan", string(body))

	_, err = s.materials.Get(m.ID, testutil.Claims(outsider))
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	_, err = s.materials.OpenFile(ctx, m.ID, testutil.Claims(outsider))
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	list, err := s.materials.List(testutil.Claims(member), 0, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = s.materials.List(testutil.Claims(outsider), 0, "")
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, s.materials.Delete(m.ID, testutil.Claims(member)), util.ErrPermissionDenied)
	require.NoError(t, s.materials.Delete(m.ID, testutil.Claims(guru)))

	_, err = s.materials.Get(m.ID, testutil.Claims(guru))
	assert.ErrorIs(t, err, util.ErrMaterialNotFound)

	list, err = s.materials.List(testutil.Claims(guru), class.ID, "")
	require.NoError(t, err)
	assert.Empty(t, list)

	var row model.Material
	require.NoError(t, s.db.First(&row, m.ID).Error)
	assert.Equal(t, model.MaterialStatusDeleted, row.Status)
}
