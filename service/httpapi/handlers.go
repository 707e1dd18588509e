package httpapi

import (
	"errors"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/service/features/command/addbook"
	"github.com/AntonStoeckl/library-loans-go/service/features/command/borrowbook"
	"github.com/AntonStoeckl/library-loans-go/service/features/command/registeruser"
	"github.com/AntonStoeckl/library-loans-go/service/features/command/removebook"
	"github.com/AntonStoeckl/library-loans-go/service/features/command/removeuser"
	"github.com/AntonStoeckl/library-loans-go/service/features/command/returnloan"
	"github.com/AntonStoeckl/library-loans-go/service/features/command/updatebook"
	"github.com/AntonStoeckl/library-loans-go/service/features/command/updateuser"
	"github.com/AntonStoeckl/library-loans-go/service/features/query/getbook"
	"github.com/AntonStoeckl/library-loans-go/service/features/query/getloan"
	"github.com/AntonStoeckl/library-loans-go/service/features/query/getuser"
	"github.com/AntonStoeckl/library-loans-go/service/features/query/listbooks"
	"github.com/AntonStoeckl/library-loans-go/service/features/query/listloans"
	"github.com/AntonStoeckl/library-loans-go/service/features/query/listusers"
	"github.com/AntonStoeckl/library-loans-go/service/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/service/shared/shell/observable"
)

// Handlers holds one handler per use case the API serves.
type Handlers struct {
	BorrowBook   shell.CommandHandler[borrowbook.Command, ledger.LoanDetails]
	ReturnLoan   shell.CommandHandler[returnloan.Command, ledger.LoanDetails]
	AddBook      shell.CommandHandler[addbook.Command, ledger.Book]
	UpdateBook   shell.CommandHandler[updatebook.Command, ledger.Book]
	RemoveBook   shell.CommandHandler[removebook.Command, struct{}]
	RegisterUser shell.CommandHandler[registeruser.Command, ledger.User]
	UpdateUser   shell.CommandHandler[updateuser.Command, ledger.User]
	RemoveUser   shell.CommandHandler[removeuser.Command, struct{}]

	ListBooks shell.QueryHandler[listbooks.Query, listbooks.Books]
	GetBook   shell.QueryHandler[getbook.Query, ledger.Book]
	ListUsers shell.QueryHandler[listusers.Query, listusers.Users]
	GetUser   shell.QueryHandler[getuser.Query, ledger.User]
	ListLoans shell.QueryHandler[listloans.Query, listloans.Loans]
	GetLoan   shell.QueryHandler[getloan.Query, ledger.LoanDetails]
}

// Store is everything the handlers need from the ledger storage.
// Both postgresengine.Store and memledger.Store satisfy it.
type Store interface {
	borrowbook.Store
	returnloan.Store
	addbook.Store
	updatebook.Store
	removebook.Store
	registeruser.Store
	updateuser.Store
	removeuser.Store
	listbooks.Store
	getbook.Store
	listusers.Store
	getuser.Store
	listloans.Store
	getloan.Store
}

type PasswordHasher interface {
	Hash(password string) (string, error)
}

// NewCoreHandlers builds the uninstrumented handlers. retryOptions apply to every command.
func NewCoreHandlers(store Store, hasher PasswordHasher, retryOptions ...shell.RetryOption) Handlers {
	return Handlers{
		BorrowBook:   borrowbook.NewCommandHandler(store, borrowbook.WithRetryOptions(retryOptions...)),
		ReturnLoan:   returnloan.NewCommandHandler(store, returnloan.WithRetryOptions(retryOptions...)),
		AddBook:      addbook.NewCommandHandler(store, addbook.WithRetryOptions(retryOptions...)),
		UpdateBook:   updatebook.NewCommandHandler(store, updatebook.WithRetryOptions(retryOptions...)),
		RemoveBook:   removebook.NewCommandHandler(store, removebook.WithRetryOptions(retryOptions...)),
		RegisterUser: registeruser.NewCommandHandler(store, hasher, registeruser.WithRetryOptions(retryOptions...)),
		UpdateUser:   updateuser.NewCommandHandler(store, hasher, updateuser.WithRetryOptions(retryOptions...)),
		RemoveUser:   removeuser.NewCommandHandler(store, removeuser.WithRetryOptions(retryOptions...)),

		ListBooks: listbooks.NewQueryHandler(store),
		GetBook:   getbook.NewQueryHandler(store),
		ListUsers: listusers.NewQueryHandler(store),
		GetUser:   getuser.NewQueryHandler(store),
		ListLoans: listloans.NewQueryHandler(store),
		GetLoan:   getloan.NewQueryHandler(store),
	}
}

// Instrument wraps every handler with the collectors of inst.
func (h Handlers) Instrument(inst observable.Instrumentation) (Handlers, error) {
	var errs [14]error
	out := Handlers{}

	out.BorrowBook, errs[0] = observable.WrapCommand(h.BorrowBook, inst)
	out.ReturnLoan, errs[1] = observable.WrapCommand(h.ReturnLoan, inst)
	out.AddBook, errs[2] = observable.WrapCommand(h.AddBook, inst)
	out.UpdateBook, errs[3] = observable.WrapCommand(h.UpdateBook, inst)
	out.RemoveBook, errs[4] = observable.WrapCommand(h.RemoveBook, inst)
	out.RegisterUser, errs[5] = observable.WrapCommand(h.RegisterUser, inst)
	out.UpdateUser, errs[6] = observable.WrapCommand(h.UpdateUser, inst)
	out.RemoveUser, errs[7] = observable.WrapCommand(h.RemoveUser, inst)

	out.ListBooks, errs[8] = observable.WrapQuery(h.ListBooks, inst)
	out.GetBook, errs[9] = observable.WrapQuery(h.GetBook, inst)
	out.ListUsers, errs[10] = observable.WrapQuery(h.ListUsers, inst)
	out.GetUser, errs[11] = observable.WrapQuery(h.GetUser, inst)
	out.ListLoans, errs[12] = observable.WrapQuery(h.ListLoans, inst)
	out.GetLoan, errs[13] = observable.WrapQuery(h.GetLoan, inst)

	if err := errors.Join(errs[:]...); err != nil {
		return Handlers{}, err
	}

	return out, nil
}
