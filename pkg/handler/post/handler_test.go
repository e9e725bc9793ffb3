package post

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
	postSvc "github.com/anzhiyu-c/anheyu-cms/pkg/service/post"
)

// stubListService 只记录 List 的调用参数，其余方法不会被触发
type stubListService struct {
	postSvc.Service
	gotResource string
	gotParams   url.Values
}

func (s *stubListService) List(_ context.Context, resource string, params url.Values, _ bool) (*model.PostListResponse, error) {
	s.gotResource = resource
	s.gotParams = params
	return &model.PostListResponse{Success: true, Data: []model.PostResponse{}}, nil
}

func TestListFeaturedForcesFeaturedFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stub := &stubListService{}
	h := NewHandler(stub, nil)

	engine := gin.New()
	engine.GET("/posts/featured", h.ListFeatured)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/posts/featured?page=2&featured=false", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("状态码 = %d", w.Code)
	}
	// 调用方传入的 featured 被覆盖，端点语义固定为精选
	if got := stub.gotParams.Get("featured"); got != "true" {
		t.Errorf("featured = %q, 期望 true", got)
	}
	if got := stub.gotParams.Get("page"); got != "2" {
		t.Errorf("其余参数应原样透传, page = %q", got)
	}
}
