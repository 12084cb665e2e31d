package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/inventario-sucursales/pkg/jwt"
)

const testSecret = "test-secret-key-for-unit-tests"

func TestJWT_GenerateAndParse(t *testing.T) {
	id := pkgjwt.Identity{UserID: "u-1", BranchID: "suc-centro", Role: "encargado"}
	tok, err := pkgjwt.Generate(testSecret, id, "inventario-test", 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	got, err := pkgjwt.Parse(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestJWT_TokenExpirado_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, pkgjwt.Identity{UserID: "u-1"}, "inventario-test", -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestJWT_SecretIncorrecto_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, pkgjwt.Identity{UserID: "u-1"}, "inventario-test", 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err, "secret incorrecto debe invalidar el token")
}

func TestJWT_SinUsuario_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, pkgjwt.Identity{Role: "admin"}, "inventario-test", 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testSecret, tok)
	assert.Error(t, err)
}

func TestJWT_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", pkgjwt.Identity{UserID: "u-1"}, "x", 60)
	assert.Error(t, err)
}
