package main

import (
	"flag"
	"log"

	"github.com/R4Flutter/RentDone/app/config"
	"github.com/R4Flutter/RentDone/app/database"
	"github.com/R4Flutter/RentDone/app/models"
	"github.com/R4Flutter/RentDone/app/routes/auth"
)

func main() {
	email := flag.String("email", "", "account email")
	password := flag.String("password", "", "account password")
	name := flag.String("name", "", "display name")
	role := flag.String("role", "owner", "account role (owner or tenant)")
	flag.Parse()

	if *email == "" || *password == "" || *name == "" {
		log.Fatal("Usage: add_user -email <email> -password <password> -name <name> [-role owner|tenant]")
	}

	config.InitDB()
	db := config.GetDB()
	defer db.Close()

	hashed, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	user := &models.User{
		Email:    *email,
		Password: hashed,
		Name:     *name,
		Role:     models.UserRole(*role),
	}
	if err := database.CreateUser(db, user); err != nil {
		log.Fatal("Failed to create user:", err)
	}

	log.Printf("Created %s account %s (%s)", user.Role, user.Email, user.ID)
}
