package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tastegent/tastegent/internal/config"
	"github.com/tastegent/tastegent/internal/domain"
	"github.com/tastegent/tastegent/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		log.Fatalf("Failed to connect to Mongo: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB.Database)
	repo := repository.NewMongoMenuRepository(db)

	items := []domain.MenuItem{
		{Name: "Margherita Pizza", Description: "Wood-fired pizza with tomato, fresh mozzarella and basil", Price: decimal.NewFromFloat(12.50), Tags: []string{"pizza", "vegetarian"}},
		{Name: "Quattro Formaggi", Description: "Four cheese pizza with gorgonzola, parmesan, mozzarella and taleggio", Price: decimal.NewFromFloat(15.00), Tags: []string{"pizza", "vegetarian"}},
		{Name: "Spaghetti Carbonara", Description: "Guanciale, pecorino romano, egg yolk and black pepper", Price: decimal.NewFromFloat(14.00), Tags: []string{"pasta"}},
		{Name: "Tagliatelle al Ragù", Description: "Slow-braised beef ragù over fresh egg tagliatelle", Price: decimal.NewFromFloat(15.50), Tags: []string{"pasta"}},
		{Name: "Risotto ai Funghi", Description: "Carnaroli rice with porcini mushrooms and parmesan", Price: decimal.NewFromFloat(16.00), Tags: []string{"risotto", "vegetarian"}},
		{Name: "Caprese Salad", Description: "Buffalo mozzarella, heirloom tomatoes and basil oil", Price: decimal.NewFromFloat(9.50), Tags: []string{"starter", "vegetarian", "gluten-free"}},
		{Name: "Bruschetta", Description: "Grilled bread with marinated tomatoes and garlic", Price: decimal.NewFromFloat(7.00), Tags: []string{"starter", "vegan"}},
		{Name: "Grilled Branzino", Description: "Whole sea bass with lemon, capers and roasted vegetables", Price: decimal.NewFromFloat(22.00), Tags: []string{"fish", "gluten-free"}},
		{Name: "Tiramisu", Description: "Espresso-soaked savoiardi with mascarpone cream", Price: decimal.NewFromFloat(8.00), Tags: []string{"dessert"}},
		{Name: "Panna Cotta", Description: "Vanilla cream with seasonal berry coulis", Price: decimal.NewFromFloat(7.50), Tags: []string{"dessert", "gluten-free"}},
	}

	for _, item := range items {
		if err := repo.Create(context.Background(), &item); err != nil {
			if err == domain.ErrDuplicateMenuItem {
				fmt.Printf("Skipping duplicate: %s\n", item.Name)
			} else {
				log.Printf("Error creating %s: %v\n", item.Name, err)
			}
		} else {
			fmt.Printf("Created: %s\n", item.Name)
		}
	}
	fmt.Println("Seeding Menu Complete.")
}
