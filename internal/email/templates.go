package email

import (
	"fmt"

	"garderobe/internal/models"
)

const emailStyle = `
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
            background-color: #faf7f5;
        }
        .container {
            background-color: white;
            padding: 40px;
            border-radius: 12px;
            box-shadow: 0 2px 10px rgba(0, 0, 0, 0.1);
        }
        .header {
            text-align: center;
            margin-bottom: 30px;
        }
        .logo {
            font-size: 28px;
            font-weight: bold;
            color: #8e4a62;
            margin-bottom: 10px;
        }
        .title {
            font-size: 24px;
            color: #8e4a62;
            margin-bottom: 20px;
        }
        .content {
            font-size: 16px;
            margin-bottom: 30px;
        }
        .cta-button {
            display: inline-block;
            background-color: #8e4a62;
            color: white;
            padding: 12px 24px;
            text-decoration: none;
            border-radius: 6px;
            font-weight: 500;
        }
        .footer {
            margin-top: 40px;
            padding-top: 20px;
            border-top: 1px solid #e9ecef;
            font-size: 14px;
            color: #6c757d;
            text-align: center;
        }
`

func (s *Service) activationHTML(user *models.User, activationToken string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Bienvenue sur Ma Garde-Robe</title>
    <style>%s</style>
</head>
<body>
    <div class="container">
        <div class="header">
            <div class="logo">Ma Garde-Robe</div>
            <div class="title">Bienvenue %s !</div>
        </div>

        <div class="content">
            <p>Merci de rejoindre Ma Garde-Robe, votre dressing virtuel !</p>

            <p><strong>Pour terminer votre inscription, activez votre compte en cliquant sur le lien ci-dessous :</strong></p>

            <p style="text-align: center; margin: 30px 0;">
                <a href="%s/activate/%s" class="cta-button">Activer mon compte</a>
            </p>

            <p style="font-size: 14px; color: #6c757d;">Ce lien d'activation expire dans 24 heures.</p>

            <p>Avec Ma Garde-Robe, vous pouvez :</p>
            <ul>
                <li>👗 Inventorier tous vos vêtements et accessoires</li>
                <li>✨ Composer des tenues pour chaque occasion</li>
                <li>🧳 Préparer vos valises avec une checklist interactive</li>
                <li>🛍️ Vendre les pièces que vous ne portez plus</li>
            </ul>
        </div>

        <div class="footer">
            <p>À très vite !</p>
            <p>L'équipe Ma Garde-Robe</p>
            <p style="margin-top: 20px; font-size: 12px;">
                Cet email a été envoyé à %s.
            </p>
        </div>
    </div>
</body>
</html>`, emailStyle, user.Username, s.baseURL, activationToken, user.Email)
}

func (s *Service) activationText(user *models.User, activationToken string) string {
	return fmt.Sprintf(`Bienvenue %s !

Merci de rejoindre Ma Garde-Robe, votre dressing virtuel !

Pour terminer votre inscription, activez votre compte en visitant :
%s/activate/%s

Ce lien d'activation expire dans 24 heures.

Avec Ma Garde-Robe, vous pouvez :
- Inventorier tous vos vêtements et accessoires
- Composer des tenues pour chaque occasion
- Préparer vos valises avec une checklist interactive
- Vendre les pièces que vous ne portez plus

À très vite !
L'équipe Ma Garde-Robe

---
Cet email a été envoyé à %s.`, user.Username, s.baseURL, activationToken, user.Email)
}

func (s *Service) welcomeHTML(user *models.User) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Votre compte est prêt</title>
    <style>%s</style>
</head>
<body>
    <div class="container">
        <div class="header">
            <div class="logo">Ma Garde-Robe</div>
            <div class="title">C'est parti, %s !</div>
        </div>

        <div class="content">
            <p>Votre compte est activé et votre dressing virtuel vous attend.</p>

            <p>Quelques idées pour commencer :</p>
            <ul>
                <li>👗 Ajoutez vos premiers vêtements à votre garde-robe</li>
                <li>✨ Composez une tenue pour la semaine</li>
                <li>🧳 Préparez la valise de votre prochain voyage</li>
            </ul>

            <p style="text-align: center; margin: 30px 0;">
                <a href="%s/dashboard" class="cta-button">Ouvrir ma garde-robe</a>
            </p>
        </div>

        <div class="footer">
            <p>Bonne organisation !</p>
            <p>L'équipe Ma Garde-Robe</p>
            <p style="margin-top: 20px; font-size: 12px;">
                Cet email a été envoyé à %s.
            </p>
        </div>
    </div>
</body>
</html>`, emailStyle, user.Username, s.baseURL, user.Email)
}

func (s *Service) welcomeText(user *models.User) string {
	return fmt.Sprintf(`C'est parti, %s !

Votre compte est activé et votre dressing virtuel vous attend.

Quelques idées pour commencer :
- Ajoutez vos premiers vêtements à votre garde-robe
- Composez une tenue pour la semaine
- Préparez la valise de votre prochain voyage

Ouvrez votre garde-robe : %s/dashboard

Bonne organisation !
L'équipe Ma Garde-Robe

---
Cet email a été envoyé à %s.`, user.Username, s.baseURL, user.Email)
}

func (s *Service) newMessageHTML(recipient, sender *models.User, messageSubject string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Nouveau message</title>
    <style>%s</style>
</head>
<body>
    <div class="container">
        <div class="header">
            <div class="logo">Ma Garde-Robe</div>
            <div class="title">Nouveau message</div>
        </div>

        <div class="content">
            <p>Bonjour %s,</p>
            <p><strong>%s</strong> vous a envoyé un message : « %s »</p>

            <p style="text-align: center; margin: 30px 0;">
                <a href="%s/messages" class="cta-button">Lire le message</a>
            </p>
        </div>

        <div class="footer">
            <p>L'équipe Ma Garde-Robe</p>
        </div>
    </div>
</body>
</html>`, emailStyle, recipient.Username, sender.Username, messageSubject, s.baseURL)
}

func (s *Service) newMessageText(recipient, sender *models.User, messageSubject string) string {
	return fmt.Sprintf(`Bonjour %s,

%s vous a envoyé un message : « %s »

Lisez-le ici : %s/messages

L'équipe Ma Garde-Robe`, recipient.Username, sender.Username, messageSubject, s.baseURL)
}

func (s *Service) friendRequestHTML(recipient, requester *models.User) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Demande d'ami</title>
    <style>%s</style>
</head>
<body>
    <div class="container">
        <div class="header">
            <div class="logo">Ma Garde-Robe</div>
            <div class="title">Demande d'ami</div>
        </div>

        <div class="content">
            <p>Bonjour %s,</p>
            <p><strong>%s</strong> souhaite devenir votre ami(e) sur Ma Garde-Robe.</p>
            <p>Une fois la demande acceptée, vous pourrez consulter vos garde-robes respectives.</p>

            <p style="text-align: center; margin: 30px 0;">
                <a href="%s/friends" class="cta-button">Répondre à la demande</a>
            </p>
        </div>

        <div class="footer">
            <p>L'équipe Ma Garde-Robe</p>
        </div>
    </div>
</body>
</html>`, emailStyle, recipient.Username, requester.Username, s.baseURL)
}

func (s *Service) friendRequestText(recipient, requester *models.User) string {
	return fmt.Sprintf(`Bonjour %s,

%s souhaite devenir votre ami(e) sur Ma Garde-Robe.
Une fois la demande acceptée, vous pourrez consulter vos garde-robes respectives.

Répondez ici : %s/friends

L'équipe Ma Garde-Robe`, recipient.Username, requester.Username, s.baseURL)
}
