package utils

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/BerniceZTT/carehome_end/models"
)

var jwtSecret []byte

// SetJWTSecret 设置签名密钥，启动时调用一次
func SetJWTSecret(key string) {
	jwtSecret = []byte(key)
}

// GenerateToken 生成JWT令牌
// 服务本身不签发令牌（登录不在本服务内），目前只有 utils、middleware、routes 的测试用它构造请求
func GenerateToken(user models.User, ttl time.Duration) (string, error) {
	if len(jwtSecret) == 0 {
		return "", fmt.Errorf("未配置JWT密钥")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"id":         user.ID.Hex(),
		"username":   user.Username,
		"role":       string(user.Role),
		"operatorId": user.OperatorID,
		"exp":        now.Add(ttl).Unix(),
		"iat":        now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		Logger.Error().Err(err).Msg("生成token失败")
		return "", err
	}
	return tokenString, nil
}

// ParseToken 解析和验证JWT令牌
func ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("无效的token")
}

// 资源与操作
const (
	ResourceInquiries = "inquiries"
	ResourceAnalytics = "analytics"
	ResourceNotes     = "notes"
	ResourceEvents    = "events"

	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionAssign = "assign"
	ActionExport = "export"
)

var rolePermissions = map[models.UserRole]map[string][]string{
	models.UserRoleOPERATOR: {
		ResourceInquiries: {ActionRead, ActionCreate, ActionUpdate, ActionAssign, ActionExport},
		ResourceAnalytics: {ActionRead},
		ResourceNotes:     {ActionRead, ActionCreate},
		ResourceEvents:    {ActionRead},
	},
	models.UserRoleSTAFF: {
		ResourceInquiries: {ActionRead, ActionCreate, ActionUpdate},
		ResourceAnalytics: {ActionRead},
		ResourceNotes:     {ActionRead, ActionCreate},
		ResourceEvents:    {ActionRead},
	},
	models.UserRoleFAMILY: {
		ResourceInquiries: {ActionRead, ActionCreate},
		ResourceNotes:     {ActionRead, ActionCreate},
		ResourceEvents:    {ActionRead},
	},
}

// HasPermission 检查用户是否有权限
func HasPermission(role models.UserRole, resource string, action string) bool {
	// 管理员拥有所有权限
	if role == models.UserRoleADMIN {
		return true
	}

	for _, a := range rolePermissions[role][resource] {
		if a == action {
			return true
		}
	}
	return false
}
