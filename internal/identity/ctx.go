package identity

import "github.com/gin-gonic/gin"

const identityCtxKey = "traderboard.identity"

func SetIdentity(c *gin.Context, id *Identity) {
	if id == nil {
		return
	}
	c.Set(identityCtxKey, id)
}

func FromGin(c *gin.Context) *Identity {
	v, ok := c.Get(identityCtxKey)
	if !ok {
		return nil
	}
	id, _ := v.(*Identity)
	return id
}
