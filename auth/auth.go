package auth

import (
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"filmkiste/common"
	"filmkiste/models"
	"filmkiste/store"
)

type AuthModule struct {
	store *store.Store
}

func NewAuthModule(st *store.Store) *AuthModule {
	return &AuthModule{store: st}
}

func (a *AuthModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/login", a.loginPage)
	router.POST("/login", a.loginPost)
	router.GET("/registrieren", a.registerPage)
	router.POST("/registrieren", a.registerPost)
	router.GET("/logout", a.logout)
	router.GET("/benutzer", a.requireAdmin, a.listUsers)
}

func (a *AuthModule) loginPage(c *gin.Context) {
	session := sessions.Default(c)
	if session.Get("user_id") != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.HTML(http.StatusOK, "auth_login.html", gin.H{})
}

func (a *AuthModule) loginPost(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	user, err := a.store.FindUserByEmail(email)
	if err != nil {
		log.Printf("Error looking up user %s: %v", email, err)
		c.HTML(http.StatusInternalServerError, "auth_login.html", gin.H{
			"error": "Anmeldung fehlgeschlagen",
			"email": email,
		})
		return
	}

	if user == nil || user.PasswordHash == nil || !common.CheckPasswordHash(password, *user.PasswordHash) {
		c.HTML(http.StatusUnauthorized, "auth_login.html", gin.H{
			"error": "E-Mail oder Passwort falsch",
			"email": email,
		})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Set("user_name", user.Name)
	session.Set("user_role", user.Role)
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

func (a *AuthModule) registerPage(c *gin.Context) {
	session := sessions.Default(c)
	if session.Get("user_id") != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.HTML(http.StatusOK, "auth_register.html", gin.H{})
}

func (a *AuthModule) registerPost(c *gin.Context) {
	name := c.PostForm("name")
	email := c.PostForm("email")
	password := c.PostForm("password")

	formData := gin.H{"name": name, "email": email}

	if name == "" || email == "" || password == "" {
		formData["error"] = "Name, E-Mail und Passwort sind Pflichtfelder"
		c.HTML(http.StatusBadRequest, "auth_register.html", formData)
		return
	}

	passwordHash, err := common.HashPassword(password)
	if err != nil {
		formData["error"] = "Konto konnte nicht angelegt werden"
		c.HTML(http.StatusInternalServerError, "auth_register.html", formData)
		return
	}

	userID, err := a.store.CreateUser(name, email, passwordHash, models.RoleUser)
	if err != nil {
		if store.IsUniqueViolation(err) {
			formData["error"] = "Diese E-Mail ist bereits registriert"
			c.HTML(http.StatusBadRequest, "auth_register.html", formData)
			return
		}
		log.Printf("Error creating user: %v", err)
		formData["error"] = "Konto konnte nicht angelegt werden"
		c.HTML(http.StatusInternalServerError, "auth_register.html", formData)
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", userID)
	session.Set("user_name", name)
	session.Set("user_role", models.RoleUser)
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

func (a *AuthModule) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()

	c.Redirect(http.StatusFound, "/login")
}

func (a *AuthModule) requireAdmin(c *gin.Context) {
	session := sessions.Default(c)
	if session.Get("user_id") == nil {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}
	if role, _ := session.Get("user_role").(string); role != models.RoleAdmin {
		c.HTML(http.StatusForbidden, "auth_error.html", gin.H{
			"error": "Nur für Administratoren",
		})
		c.Abort()
		return
	}
	c.Next()
}

func (a *AuthModule) listUsers(c *gin.Context) {
	users, err := a.store.ListUsers()
	if err != nil {
		log.Printf("Error listing users: %v", err)
		c.HTML(http.StatusInternalServerError, "auth_error.html", gin.H{
			"error": "Benutzer konnten nicht geladen werden",
		})
		return
	}

	c.HTML(http.StatusOK, "auth_users.html", gin.H{
		"users": users,
	})
}
