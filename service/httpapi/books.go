package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AntonStoeckl/library-loans-go/service/features/command/addbook"
	"github.com/AntonStoeckl/library-loans-go/service/features/command/removebook"
	"github.com/AntonStoeckl/library-loans-go/service/features/command/updatebook"
	"github.com/AntonStoeckl/library-loans-go/service/features/query/getbook"
	"github.com/AntonStoeckl/library-loans-go/service/features/query/listbooks"
)

func (s *server) listBooks(c *gin.Context) {
	result, err := s.handlers.ListBooks.Handle(c.Request.Context(), listbooks.BuildQuery())
	if err != nil {
		s.writeError(c, err)
		return
	}

	resources := make([]bookResource, 0, result.Count)
	for _, book := range result.Books {
		resources = append(resources, toBookResource(book))
	}

	c.JSON(http.StatusOK, resources)
}

func (s *server) getBook(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		abortWithDetail(c, http.StatusNotFound, detailNotFound)
		return
	}

	book, err := s.handlers.GetBook.Handle(c.Request.Context(), getbook.BuildQuery(id))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBookResource(book))
}

func (s *server) createBook(c *gin.Context) {
	var payload bookPayload
	if !s.bindJSON(c, &payload) {
		return
	}

	book, _, err := s.handlers.AddBook.Handle(c.Request.Context(), addbook.BuildCommand(actorFrom(c), payload.fields()))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookResource(book))
}

func (s *server) updateBook(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		abortWithDetail(c, http.StatusNotFound, detailNotFound)
		return
	}

	var payload bookChangesPayload
	if !s.bindJSON(c, &payload) {
		return
	}

	book, _, err := s.handlers.UpdateBook.Handle(c.Request.Context(), updatebook.BuildCommand(actorFrom(c), id, payload.changes()))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBookResource(book))
}

func (s *server) deleteBook(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		abortWithDetail(c, http.StatusNotFound, detailNotFound)
		return
	}

	if _, _, err := s.handlers.RemoveBook.Handle(c.Request.Context(), removebook.BuildCommand(actorFrom(c), id)); err != nil {
		s.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
