package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AntonStoeckl/library-loans-go/service/features/command/borrowbook"
	"github.com/AntonStoeckl/library-loans-go/service/features/command/returnloan"
	"github.com/AntonStoeckl/library-loans-go/service/features/query/getloan"
	"github.com/AntonStoeckl/library-loans-go/service/features/query/listloans"
)

func (s *server) listLoans(c *gin.Context) {
	var userID *int64
	if raw, ok := c.GetQuery("user"); ok && raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.writeError(c, fmt.Errorf("%w: user must be a numeric id", errMalformedRequest))
			return
		}
		userID = &id
	}

	query, err := listloans.BuildQuery(actorFrom(c), userID, c.Query("status"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	result, err := s.handlers.ListLoans.Handle(c.Request.Context(), query)
	if err != nil {
		s.writeError(c, err)
		return
	}

	now := s.clock()
	resources := make([]loanResource, 0, result.Count)
	for _, loan := range result.Loans {
		resources = append(resources, toLoanResource(loan, now))
	}

	c.JSON(http.StatusOK, resources)
}

func (s *server) getLoan(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		abortWithDetail(c, http.StatusNotFound, detailNotFound)
		return
	}

	loan, err := s.handlers.GetLoan.Handle(c.Request.Context(), getloan.BuildQuery(id))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toLoanResource(loan, s.clock()))
}

func (s *server) createLoan(c *gin.Context) {
	var payload loanPayload
	if !s.bindJSON(c, &payload) {
		return
	}

	if payload.Book <= 0 {
		s.writeError(c, fmt.Errorf("%w: book is required", errMalformedRequest))
		return
	}

	dueDate, err := payload.dueDate()
	if err != nil {
		s.writeError(c, err)
		return
	}

	loan, _, err := s.handlers.BorrowBook.Handle(
		c.Request.Context(),
		borrowbook.BuildCommand(actorFrom(c), payload.Book, payload.User, dueDate),
	)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toLoanResource(loan, s.clock()))
}

func (s *server) returnLoan(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		abortWithDetail(c, http.StatusNotFound, detailNotFound)
		return
	}

	loan, _, err := s.handlers.ReturnLoan.Handle(c.Request.Context(), returnloan.BuildCommand(actorFrom(c), id))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toLoanResource(loan, s.clock()))
}
