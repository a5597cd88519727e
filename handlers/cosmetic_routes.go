// handlers/cosmetic_routes.go
package handlers

import (
	"fmt"
	"log"
	"path/filepath"
	"strconv"

	"neoengine-ledger-service/middleware"
	"neoengine-ledger-service/services"
	"neoengine-ledger-service/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
)

func SetupCosmeticRoutes(app *fiber.App, cosmeticService *services.CosmeticService) {
	securedGroup := app.Group("/user", middleware.UserContextMiddleware())
	adminGroup := app.Group("/admin", middleware.UserContextMiddleware(), middleware.RequireRole("admin"))

	adminGroup.Post("/cosmetics/registry", func(c *fiber.Ctx) error {
		authorityID := c.Locals("user_id").(string)
		registry, err := cosmeticService.InitializeRegistry(authorityID)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(registry)
	})

	// Template creation takes either a JSON body or a multipart form with an
	// optional "artwork" file that lands in R2.
	adminGroup.Post("/cosmetics/templates/:templateId", func(c *fiber.Ctx) error {
		authorityID := c.Locals("user_id").(string)
		templateID := c.Params("templateId")

		var input services.CreateTemplateInput
		if form, err := c.MultipartForm(); err == nil && form != nil {
			input.Name = c.FormValue("name")
			input.Description = c.FormValue("description")
			input.CosmeticType = c.FormValue("cosmetic_type")
			input.Rarity = c.FormValue("rarity")
			input.Collection = c.FormValue("collection")
			input.Tradable = c.FormValue("tradable", "true") == "true"
			if v := c.FormValue("max_supply"); v != "" {
				maxSupply, err := strconv.ParseInt(v, 10, 64)
				if err != nil {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid max_supply"})
				}
				input.MaxSupply = maxSupply
			}

			if fileHeader, err := c.FormFile("artwork"); err == nil {
				key := fmt.Sprintf("cosmetics/%s%s", slug.Make(templateID), filepath.Ext(fileHeader.Filename))
				url, err := utils.UploadFileToR2(fileHeader, key)
				if err != nil {
					log.Printf("R2 upload failed for template %s: %v", templateID, err)
					return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload artwork"})
				}
				input.ImageURL = url
			}
		} else if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		template, err := cosmeticService.CreateTemplate(authorityID, templateID, input)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(template)
	})

	adminGroup.Post("/cosmetics/templates/:templateId/mint", func(c *fiber.Ctx) error {
		authorityID := c.Locals("user_id").(string)
		templateID := c.Params("templateId")

		var req struct {
			RecipientID string `json:"recipient_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.RecipientID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "recipient_id is required"})
		}

		minted, err := cosmeticService.MintCosmetic(authorityID, templateID, req.RecipientID)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(minted)
	})

	securedGroup.Post("/cosmetics/:mintId/stake", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		mintID := c.Params("mintId")

		var req struct {
			ProfileID    string `json:"profile_id"`
			CosmeticType string `json:"cosmetic_type"`
		}
		if err := c.BodyParser(&req); err != nil || req.ProfileID == "" || req.CosmeticType == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "profile_id and cosmetic_type are required"})
		}

		record, err := cosmeticService.StakeCosmeticToProfile(userID, mintID, req.ProfileID, req.CosmeticType)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(record)
	})

	securedGroup.Post("/cosmetics/:mintId/unstake", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		mintID := c.Params("mintId")

		var req struct {
			ProfileID string `json:"profile_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.ProfileID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "profile_id is required"})
		}

		if err := cosmeticService.UnstakeCosmeticFromProfile(userID, mintID, req.ProfileID); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "Cosmetic unstaked successfully"})
	})

	securedGroup.Get("/cosmetics", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		inventory, err := cosmeticService.UserInventory(userID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(inventory)
	})

	app.Get("/cosmetics/:mintId/staked", middleware.UserContextMiddleware(), func(c *fiber.Ctx) error {
		mintID := c.Params("mintId")
		profileID := c.Query("profile_id")
		if profileID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "profile_id query param is required"})
		}

		staked, err := cosmeticService.IsStaked(mintID, profileID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"cosmetic_mint_id": mintID, "profile_id": profileID, "staked": staked})
	})
}
