package routes

import (
	"net/http"

	mw "smartclass/middleware"
)

// Table lists every API route with the policy guarding it.
func Table(d *Deps) []Route {
	var t []Route
	t = append(t, authRoutes(d)...)
	t = append(t, classRoutes(d)...)
	t = append(t, userRoutes(d)...)
	t = append(t, cartRoutes(d)...)
	t = append(t, moderatorRoutes(d)...)
	t = append(t, payRoutes(d)...)
	t = append(t, analyticsRoutes(d)...)
	t = append(t, adminRoutes(d)...)
	return t
}

func authRoutes(d *Deps) []Route {
	return []Route{
		{http.MethodPost, "/api/set-token", mw.Public, d.Auth.SetToken, true},
		{http.MethodPost, "/jwt", mw.Public, d.Auth.SetToken, true},
	}
}

func classRoutes(d *Deps) []Route {
	c := d.Classes
	return []Route{
		{http.MethodPost, "/new-class", mw.InstructorOrAdmin, c.CreateClass, false},
		{http.MethodGet, "/classes", mw.Public, c.ListApproved, false},
		{http.MethodGet, "/classes/:email", mw.InstructorOrAdmin, c.ListByInstructor, false},
		{http.MethodGet, "/classes-manage", mw.AdminOnly, c.ListAll, false},
		{http.MethodPut, "/change-status/:id", mw.AdminOnly, c.ChangeStatus, false},
		{http.MethodGet, "/approved-classes", mw.Public, c.ListApproved, false},
		{http.MethodGet, "/approved-classes/:email", mw.InstructorOrAdmin, c.ListApprovedByInstructor, false},
		{http.MethodGet, "/pending-classes/:email", mw.InstructorOrAdmin, c.ListPendingByInstructor, false},
		{http.MethodGet, "/class/:id", mw.Public, c.GetClass, false},
		{http.MethodPut, "/update-class/:id", mw.InstructorOrAdmin, c.UpdateClass, false},
	}
}

func userRoutes(d *Deps) []Route {
	u := d.Users
	return []Route{
		{http.MethodPost, "/new-user", mw.Public, u.CreateUser, false},
		{http.MethodGet, "/users", mw.AdminOnly, u.ListUsers, false},
		{http.MethodGet, "/users/:id", mw.Public, u.GetUser, false},
		{http.MethodGet, "/user/:email", mw.Authenticated, u.GetUserByEmail, false},
		{http.MethodDelete, "/delete-user/:id", mw.AdminOnly, u.DeleteUser, false},
		{http.MethodPut, "/update-user/:id", mw.AdminOnly, u.UpdateUser, false},
		{http.MethodGet, "/instructors", mw.Public, u.ListInstructors, false},
	}
}

func cartRoutes(d *Deps) []Route {
	c := d.Cart
	return []Route{
		{http.MethodPost, "/add-to-cart", mw.Authenticated, c.AddToCart, false},
		{http.MethodGet, "/cart-item/:id", mw.Authenticated, c.GetCartItem, false},
		{http.MethodGet, "/cart/:email", mw.Authenticated.Owner("email"), c.GetCart, false},
		{http.MethodDelete, "/delete-cart-item/:id", mw.Authenticated, c.DeleteCartItem, false},
	}
}

func moderatorRoutes(d *Deps) []Route {
	return []Route{
		{http.MethodPost, "/as-instructor", mw.Authenticated, d.Moderator.ApplyInstructor, false},
		{http.MethodGet, "/applied-instructors/:email", mw.Public, d.Moderator.GetApplication, false},
	}
}

func payRoutes(d *Deps) []Route {
	p := d.Pay
	return []Route{
		{http.MethodPost, "/create-payment-intent", mw.Public, p.CreatePaymentIntent, true},
		{http.MethodPost, "/payment-info", mw.Authenticated, p.PaymentInfo, true},
		{http.MethodGet, "/payment-history/:email", mw.Authenticated.Owner("email"), p.PaymentHistory, false},
		{http.MethodGet, "/payment-history-length/:email", mw.Authenticated.Owner("email"), p.PaymentHistoryLength, false},
		{http.MethodGet, "/payment-receipt/:transactionId", mw.Authenticated, p.PaymentReceipt, false},
		{http.MethodGet, "/verify-receipt", mw.Public, p.VerifyReceipt, true},
	}
}

func analyticsRoutes(d *Deps) []Route {
	a := d.Analytics
	return []Route{
		{http.MethodGet, "/popular_classes", mw.Public, a.PopularClasses, false},
		{http.MethodGet, "/popular-instructors", mw.Public, a.PopularInstructors, false},
		{http.MethodGet, "/enrolled-classes/:email", mw.Authenticated.Owner("email"), a.EnrolledClasses, false},
	}
}

func adminRoutes(d *Deps) []Route {
	return []Route{
		{http.MethodGet, "/admin-stats", mw.AdminOnly, d.Admin.Stats, false},
		{http.MethodGet, "/ws/admin/events", mw.AdminOnly, d.Admin.LiveFeed, false},
	}
}
