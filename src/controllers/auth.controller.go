package controllers

import (
	"errors"
	"log"
	"net/http"

	"stays/src/db"
	"stays/src/models"
	"stays/src/types"
	"stays/src/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func AuthRegister(ctx *gin.Context) (*models.User, int, error) {
	var body types.RegisterUserRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	user := models.User{
		Name:         body.Name,
		Email:        body.Email,
		PasswordHash: string(hash),
	}
	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.
			Model(&models.User{}).
			Where(&models.User{Email: body.Email}).
			Count(&existing).
			Error; err != nil {
			return err
		}
		if existing > 0 {
			return errors.New("email already registered")
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		log.Printf("Could not register user: %s\n", err.Error())
		return nil, http.StatusConflict, err
	}
	return &user, http.StatusCreated, nil
}

func AuthLogin(ctx *gin.Context) (*string, int, error) {
	var body types.LoginRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	db := db.GetDb()
	var user models.User
	if err := db.
		Model(&models.User{}).
		Where(&models.User{Email: body.Email}).
		First(&user).
		Error; err != nil {
		return nil, http.StatusUnauthorized, errors.New("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
		return nil, http.StatusUnauthorized, errors.New("invalid credentials")
	}
	token, err := utils.GenerateJWT(user.Email, user.ID, user.Role)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return &token, http.StatusOK, nil
}
