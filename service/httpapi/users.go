package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AntonStoeckl/library-loans-go/service/features/command/registeruser"
	"github.com/AntonStoeckl/library-loans-go/service/features/command/removeuser"
	"github.com/AntonStoeckl/library-loans-go/service/features/command/updateuser"
	"github.com/AntonStoeckl/library-loans-go/service/features/query/getuser"
	"github.com/AntonStoeckl/library-loans-go/service/features/query/listusers"
)

func (s *server) listUsers(c *gin.Context) {
	result, err := s.handlers.ListUsers.Handle(c.Request.Context(), listusers.BuildQuery())
	if err != nil {
		s.writeError(c, err)
		return
	}

	resources := make([]userResource, 0, result.Count)
	for _, user := range result.Users {
		resources = append(resources, toUserResource(user))
	}

	c.JSON(http.StatusOK, resources)
}

func (s *server) getUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		abortWithDetail(c, http.StatusNotFound, detailNotFound)
		return
	}

	user, err := s.handlers.GetUser.Handle(c.Request.Context(), getuser.BuildQuery(id))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResource(user))
}

func (s *server) me(c *gin.Context) {
	user, err := s.handlers.GetUser.Handle(c.Request.Context(), getuser.BuildQuery(actorFrom(c).UserID))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, meResource{ID: user.ID, Username: user.Username, Email: user.Email, IsStaff: user.IsStaff})
}

func (s *server) createUser(c *gin.Context) {
	var payload userPayload
	if !s.bindJSON(c, &payload) {
		return
	}

	cmd := registeruser.BuildCommand(nil, payload.fields(), "")
	if claims, ok := claimsFrom(c); ok {
		actor := claims.Actor()
		cmd = registeruser.BuildCommand(&actor, payload.fields(), "")
	}

	if payload.Password != nil {
		cmd.Password = *payload.Password
	}

	user, _, err := s.handlers.RegisterUser.Handle(c.Request.Context(), cmd)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResource(user))
}

func (s *server) updateUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		abortWithDetail(c, http.StatusNotFound, detailNotFound)
		return
	}

	var payload userChangesPayload
	if !s.bindJSON(c, &payload) {
		return
	}

	user, _, err := s.handlers.UpdateUser.Handle(
		c.Request.Context(),
		updateuser.BuildCommand(actorFrom(c), id, payload.changes(), payload.Password),
	)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResource(user))
}

func (s *server) deleteUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		abortWithDetail(c, http.StatusNotFound, detailNotFound)
		return
	}

	if _, _, err := s.handlers.RemoveUser.Handle(c.Request.Context(), removeuser.BuildCommand(actorFrom(c), id)); err != nil {
		s.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
