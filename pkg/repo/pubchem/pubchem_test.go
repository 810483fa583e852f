package pubchem_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/repo/pubchem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCompoundByCAS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/64-17-5/") {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"PropertyTable":{"Properties":[{"Title":"Ethanol","MolecularFormula":"C2H6O","CanonicalSMILES":"CCO"}]}}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	repo := pubchem.New(srv.URL)

	info, err := repo.GetCompoundByCAS(context.Background(), "64-17-5")
	require.NoError(t, err)
	assert.Equal(t, "Ethanol", info.Name)
	assert.Equal(t, "C2H6O", info.MolecularFormula)
	assert.Equal(t, "CCO", info.SMILES)

	_, err = repo.GetCompoundByCAS(context.Background(), "0-00-0")
	assert.ErrorIs(t, err, code.CASNotFound)
}
