package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/diewo77/emenu/internal/models"
)

func TestDirectoryFeaturedAndCounts(t *testing.T) {
	db := openTestDB(t)
	owner := models.User{Email: "o@x", Password: "h"}
	require.NoError(t, db.Create(&owner).Error)

	names := []string{"A", "B", "C", "D", "E"}
	types := []string{models.TypeRestaurant, models.TypeRestaurant, models.TypeCafe, models.TypeBar, models.TypeHotel}
	for i, n := range names {
		require.NoError(t, db.Create(&models.Structure{
			UserID: owner.ID, Nom: n, Telephone: "01", Adresse: "r", Ville: "Paris", Type: types[i],
		}).Error)
	}

	svc := NewDirectoryService(db)
	featured, err := svc.Featured(4)
	require.NoError(t, err)
	require.Len(t, featured, 4)
	require.Equal(t, "A", featured[0].Nom)

	counts, err := svc.CategoryCounts()
	require.NoError(t, err)
	byType := map[string]int64{}
	for _, c := range counts {
		byType[c.Type] = c.Count
	}
	require.EqualValues(t, 2, byType[models.TypeRestaurant])
	require.EqualValues(t, 1, byType[models.TypeCafe])
	require.EqualValues(t, 0, byType[models.TypeAutre])
}

func TestDirectoryListFilters(t *testing.T) {
	db := openTestDB(t)
	owner := models.User{Email: "o@x", Password: "h"}
	require.NoError(t, db.Create(&owner).Error)

	require.NoError(t, db.Create(&models.Structure{UserID: owner.ID, Nom: "P1", Telephone: "01", Adresse: "r", Ville: "Paris", Type: models.TypeCafe}).Error)
	require.NoError(t, db.Create(&models.Structure{UserID: owner.ID, Nom: "L1", Telephone: "01", Adresse: "r", Ville: "Lyon", Type: models.TypeCafe}).Error)
	require.NoError(t, db.Create(&models.Structure{UserID: owner.ID, Nom: "P2", Telephone: "01", Adresse: "r", Ville: "Paris", Type: models.TypeBar}).Error)

	svc := NewDirectoryService(db)

	all, err := svc.List("", "")
	require.NoError(t, err)
	require.Len(t, all, 3)

	paris, err := svc.List("Paris", "")
	require.NoError(t, err)
	require.Len(t, paris, 2)

	parisBars, err := svc.List("Paris", models.TypeBar)
	require.NoError(t, err)
	require.Len(t, parisBars, 1)
	require.Equal(t, "P2", parisBars[0].Nom)

	villes, err := svc.Villes()
	require.NoError(t, err)
	require.Equal(t, []string{"Lyon", "Paris"}, villes)

	types, err := svc.Types()
	require.NoError(t, err)
	require.Equal(t, []string{models.TypeBar, models.TypeCafe}, types)
}
