package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/edutrack-backend/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
	Setup(nil)
}

func bindBody(t *testing.T, body string, dst interface{}) map[string]string {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return Bind(c, dst)
}

func TestBind_SubjectInput(t *testing.T) {
	var in model.SubjectInput
	fields := bindBody(t, `{"code":"CS201","name":"Data Structures","credits":4,"grade":"a+"}`, &in)
	assert.Nil(t, fields)
	assert.Equal(t, "a+", in.Grade)

	var ten model.SubjectInput
	assert.Nil(t, bindBody(t, `{"code":"CS299","name":"Project","credits":10,"grade":"O"}`, &ten))
}

func TestBind_CreditsMustBePositive(t *testing.T) {
	for _, credits := range []string{"0", "-4", "11"} {
		var in model.SubjectInput
		fields := bindBody(t, `{"code":"CS299","name":"Seminar","credits":`+credits+`,"grade":"O"}`, &in)
		require.NotNil(t, fields, "credits %s", credits)
		assert.Equal(t, "credits must be between 1 and 10", fields["credits"], "credits %s", credits)
	}
}

func TestBind_DomainTags(t *testing.T) {
	var in model.SubjectInput
	fields := bindBody(t, `{"code":"CS201","name":"Data Structures","credits":11,"grade":"Z"}`, &in)
	require.NotNil(t, fields)
	assert.Equal(t, "credits must be between 1 and 10", fields["credits"])
	assert.Contains(t, fields["grade"], "grade must be one of O, A+")
}

func TestBind_NestedFieldPaths(t *testing.T) {
	var req model.ReplaceSubjectsRequest
	body := `{"subjects":[
		{"code":"CS201","name":"Data Structures","credits":4,"grade":"A"},
		{"code":"CS202","name":"Operating Systems","credits":-1,"grade":"A"}
	]}`
	fields := bindBody(t, body, &req)
	require.NotNil(t, fields)
	assert.Contains(t, fields, "subjects[1].credits")
}

func TestBind_SyntaxError(t *testing.T) {
	var in model.SubjectInput
	fields := bindBody(t, `{"code":`, &in)
	require.NotNil(t, fields)
	assert.Contains(t, fields, "detail")
}
