package utils

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/carehome_end/models"
	"github.com/BerniceZTT/carehome_end/pipeline"
)

// 上下文中保存当前用户的键
const ContextUserKey = "user"

// LoginUser 当前登录用户
type LoginUser struct {
	ID         string          `json:"id"`
	Role       models.UserRole `json:"role"`
	Username   string          `json:"username"`
	OperatorID string          `json:"operatorId,omitempty"`
}

// GetUser 从上下文取出认证中间件写入的用户
func GetUser(c *gin.Context) (*LoginUser, error) {
	currentUser, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, fmt.Errorf("GetUser 未授权访问")
	}

	var claims map[string]interface{}
	switch v := currentUser.(type) {
	case *LoginUser:
		return v, nil
	case jwt.MapClaims:
		claims = v
	case map[string]interface{}:
		claims = v
	default:
		data, err := json.Marshal(currentUser)
		if err != nil {
			return nil, fmt.Errorf("序列化用户信息失败: %v", err)
		}
		if err := json.Unmarshal(data, &claims); err != nil {
			return nil, fmt.Errorf("反序列化用户信息失败: %v", err)
		}
	}
	return userFromClaims(claims)
}

func userFromClaims(claims map[string]interface{}) (*LoginUser, error) {
	id, ok := claims["id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("无效的用户ID")
	}

	role, ok := claims["role"].(string)
	if !ok || !models.IsValidUserRole(role) {
		return nil, fmt.Errorf("无效的用户角色")
	}

	username, ok := claims["username"].(string)
	if !ok {
		if name, ok := claims["name"].(string); ok {
			username = name
		} else {
			return nil, fmt.Errorf("无效的用户名")
		}
	}

	operatorID, _ := claims["operatorId"].(string)

	return &LoginUser{
		ID:         id,
		Role:       models.UserRole(role),
		Username:   username,
		OperatorID: operatorID,
	}, nil
}

// PaginatedResponse 分页列表响应，key 为列表字段名
func PaginatedResponse(c *gin.Context, key string, data interface{}, pagination pipeline.Pagination) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		key:          data,
		"pagination": pagination,
	})
}
